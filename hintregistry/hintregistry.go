// Package hintregistry implements the external hint-tag registry spec
// §9 calls out: tag name -> severity + mustache-templated message.
// Hint *content* (the registry's data) is explicitly out of the
// core's scope per spec §1 ("hint-tag registry... Explicitly out of
// scope"); this package supplies a small built-in default registry
// covering the tags spec.md names by example, behind the same
// Known/IsError contract extractor.HintRegistry expects, plus the
// "must be loaded before any extraction begins" guard (spec §9).
package hintregistry

import (
	"context"
	"os"
	"strings"

	"github.com/quay/zlog"
	"gopkg.in/yaml.v3"

	"github.com/ximion/appstream-generator-sub002"
)

// Severity is a registered tag's issue level.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// TagDefinition is one registered hint tag: its severity and a
// mustache-style message template ("{{var}}" placeholders filled from
// a Hint's Vars map).
type TagDefinition struct {
	Severity Severity `yaml:"severity"`
	Template string   `yaml:"message"`
}

// Registry is the loaded set of tag definitions. The zero value is
// unloaded; extraction must not begin until Load or LoadDefault has
// populated it (spec §9 "the registry must be loaded before any
// extraction begins").
type Registry struct {
	tags   map[string]TagDefinition
	loaded bool
}

var _ interface {
	Known(tag string) bool
	IsError(tag string) bool
} = (*Registry)(nil)

// reservedUnknownTag is the fallback tag extraction reports an
// unrecognized tag name through (spec §9).
const reservedUnknownTag = "internal-unknown-tag"

// defaultTags is the built-in registry covering every tag this
// specification names by example (spec §4.4, §4.5, §4.6, §7, §9).
var defaultTags = map[string]TagDefinition{
	"metainfo-no-id":            {Severity: SeverityError, Template: "Component in {{filename}} has no id."},
	"metainfo-parse-error":      {Severity: SeverityError, Template: "Could not parse metainfo file: {{error}}"},
	"desktop-file-error":        {Severity: SeverityWarning, Template: "Could not parse desktop file: {{error}}"},
	"icon-scaled-up":            {Severity: SeverityInfo, Template: "Icon was scaled up from a smaller source."},
	"icon-too-small":            {Severity: SeverityWarning, Template: "Icon source was smaller than the minimum usable size."},
	"icon-not-found":            {Severity: SeverityWarning, Template: "No suitable 64x64 icon could be found or derived."},
	"pkg-extract-error":         {Severity: SeverityError, Template: "Failed to extract package contents: {{error}}"},
	"pkg-processing-exception":  {Severity: SeverityError, Template: "Unexpected error while processing package: {{detail}}"},
	"internal-unknown-tag":      {Severity: SeverityWarning, Template: "Unknown hint tag encountered: {{tag}}"},
	"screenshot-download-error": {Severity: SeverityWarning, Template: "Could not download screenshot from {{url}}."},
	"screenshot-render-error":   {Severity: SeverityWarning, Template: "Could not render screenshot thumbnails."},
	"font-render-error":         {Severity: SeverityWarning, Template: "Could not render font preview for {{path}}."},
}

// LoadDefault returns a Registry preloaded with the built-in tag set.
func LoadDefault() *Registry {
	r := &Registry{tags: make(map[string]TagDefinition, len(defaultTags)), loaded: true}
	for k, v := range defaultTags {
		r.tags[k] = v
	}
	return r
}

// Load reads a YAML document of tag -> {severity, message} and merges
// it over the built-in default set, so a deployment can add or
// override tags without losing the reserved ones.
func Load(ctx context.Context, path string) (*Registry, error) {
	r := LoadDefault()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, asgen.NewError("hintregistry.Load", asgen.ErrInternal, "reading hint registry file failed", err)
	}
	var extra map[string]TagDefinition
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, asgen.NewError("hintregistry.Load", asgen.ErrInvalid, "parsing hint registry file failed", err)
	}
	for tag, def := range extra {
		r.tags[tag] = def
	}
	zlog.Info(ctx).Int("count", len(r.tags)).Str("path", path).Msg("hint registry loaded")
	return r, nil
}

// Loaded reports whether this registry has been populated at all
// (either via LoadDefault or Load), enforcing spec §9's invariant.
func (r *Registry) Loaded() bool { return r != nil && r.loaded }

// Known reports whether tag is registered.
func (r *Registry) Known(tag string) bool {
	if r == nil {
		return false
	}
	_, ok := r.tags[tag]
	return ok
}

// IsError reports whether tag carries error severity (spec §3 "Hint":
// "Error-severity hints invalidate their component").
func (r *Registry) IsError(tag string) bool {
	if r == nil {
		return false
	}
	return r.tags[tag].Severity == SeverityError
}

// Severity returns tag's registered severity, defaulting to warning
// for the reserved unknown-tag marker and for anything somehow still
// unregistered after the internal-unknown-tag rewrite.
func (r *Registry) Severity(tag string) Severity {
	if r == nil {
		return SeverityWarning
	}
	if def, ok := r.tags[tag]; ok {
		return def.Severity
	}
	return SeverityWarning
}

// Render expands a hint's message template against its Vars, replacing
// every "{{name}}" placeholder; unknown placeholders are left as-is.
func (r *Registry) Render(h asgen.Hint) string {
	def, ok := r.tags[h.Tag]
	if !ok {
		def = TagDefinition{Template: h.Tag}
	}
	msg := def.Template
	for k, v := range h.Vars {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// ReservedUnknownTag exposes reservedUnknownTag for callers outside
// this package that need to special-case it (e.g. a report renderer
// highlighting tags that fell back to it).
func ReservedUnknownTag() string { return reservedUnknownTag }
