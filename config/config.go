// Package config loads the generator's single immutable configuration
// value (spec §6 "Configuration", spec §9 "Singleton config": "the
// source uses a process-global mutable Config... reimplement as an
// immutable value constructed once at startup and passed explicitly").
//
// Loading follows the same gopkg.in/yaml.v3 + os.ReadFile style as
// overthinkos-overthink's RuntimeConfig loader, plus a yaml.Node
// unknown-key scan so unrecognized top-level keys only warn (spec §6
// "unknown keys ignored with a warning") instead of failing decode.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/quay/zlog"
	"gopkg.in/yaml.v3"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/extractor"
	"github.com/ximion/appstream-generator-sub002/icons"
)

// Backend is one of the recognized external package-source backends
// (spec §6 "Backend").
type Backend string

const (
	BackendDebian    Backend = "debian"
	BackendUbuntu    Backend = "ubuntu"
	BackendArchLinux Backend = "archlinux"
	BackendRPMMD     Backend = "rpmmd"
	BackendFlatpak   Backend = "flatpak"
	BackendFreeBSD   Backend = "freebsd"
	BackendDummy     Backend = "dummy"
)

var knownBackends = map[Backend]bool{
	BackendDebian: true, BackendUbuntu: true, BackendArchLinux: true,
	BackendRPMMD: true, BackendFlatpak: true, BackendFreeBSD: true,
	BackendDummy: true,
}

// SuiteConfig is one entry of the "Suites" config map (spec §6).
type SuiteConfig struct {
	DataPriority  int      `yaml:"dataPriority"`
	BaseSuite     string   `yaml:"baseSuite,omitempty"`
	Sections      []string `yaml:"sections"`
	Architectures []string `yaml:"architectures"`
}

// IconPolicyEntry mirrors icons.PolicyEntry in its YAML-facing shape
// (spec §6 "IconPolicy").
type IconPolicyEntry struct {
	Size        int  `yaml:"size"`
	Scale       int  `yaml:"scale"`
	StoreCached bool `yaml:"storeCached"`
	StoreRemote bool `yaml:"storeRemote"`
}

// ToPolicy converts the YAML-facing slice into an icons.Policy.
func ToPolicy(entries []IconPolicyEntry) icons.Policy {
	out := make(icons.Policy, 0, len(entries))
	for _, e := range entries {
		scale := e.Scale
		if scale == 0 {
			scale = 1
		}
		out = append(out, icons.PolicyEntry{
			Size:        icons.Size{Width: e.Size, Height: e.Size, Scale: scale},
			StoreCached: e.StoreCached,
			StoreRemote: e.StoreRemote,
		})
	}
	return out
}

// Features is the "Features" config map, one boolean per optional
// handler (spec §6). Field names match the YAML keys exactly so no
// translation table is needed.
type Features struct {
	Validate           bool `yaml:"validate"`
	ProcessDesktop     bool `yaml:"processDesktop"`
	ProcessLocale      bool `yaml:"processLocale"`
	ProcessFonts       bool `yaml:"processFonts"`
	Screenshots        bool `yaml:"screenshots"`
	ScreenshotVideos   bool `yaml:"screenshotVideos"`
	StoreScreenshots   bool `yaml:"storeScreenshots"`
	AllowIconUpscale   bool `yaml:"allowIconUpscale"`
	Optipng            bool `yaml:"optipng"`
	MetadataTimestamps bool `yaml:"metadataTimestamps"`
}

// ToExtractorFeatures adapts Features into extractor.Features.
func (f Features) ToExtractorFeatures() extractor.Features {
	return extractor.Features{
		Validate:           f.Validate,
		ProcessDesktop:     f.ProcessDesktop,
		ProcessLocale:      f.ProcessLocale,
		ProcessFonts:       f.ProcessFonts,
		Screenshots:        f.Screenshots,
		ScreenshotVideos:   f.ScreenshotVideos,
		StoreScreenshots:   f.StoreScreenshots,
		AllowIconUpscale:   f.AllowIconUpscale,
		Optipng:            f.Optipng,
		MetadataTimestamps: f.MetadataTimestamps,
	}
}

// Config is the immutable, fully-validated configuration value every
// component is constructed from (spec §6). Once Load returns, nothing
// in this module mutates it.
type Config struct {
	ProjectName  string `yaml:"ProjectName"`
	ArchiveRoot  string `yaml:"ArchiveRoot"`
	MediaBaseURL string `yaml:"MediaBaseUrl"`
	HTMLBaseURL  string `yaml:"HtmlBaseUrl"`

	Backend      Backend      `yaml:"Backend"`
	MetadataType asgen.MetadataKind `yaml:"MetadataType"`
	WorkspaceDir string       `yaml:"WorkspaceDir"`

	Suites map[string]SuiteConfig `yaml:"Suites"`

	Features Features `yaml:"Features"`

	IconPolicy []IconPolicyEntry `yaml:"IconPolicy"`

	MaxVideoFileSize int `yaml:"MaxVideoFileSize"`
}

// recognizedTopLevelKeys drives the "unknown keys ignored with a
// warning" contract (spec §6).
var recognizedTopLevelKeys = map[string]bool{
	"ProjectName": true, "ArchiveRoot": true, "MediaBaseUrl": true,
	"HtmlBaseUrl": true, "Backend": true, "MetadataType": true,
	"WorkspaceDir": true, "Suites": true, "Features": true,
	"IconPolicy": true, "MaxVideoFileSize": true,
}

// Load reads and validates the YAML configuration file at path.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, asgen.NewError("config.Load", asgen.ErrInternal, "reading config file failed", err)
	}

	warnUnknownKeys(ctx, data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, asgen.NewError("config.Load", asgen.ErrInvalid, "parsing config file failed", err)
	}
	if cfg.MetadataType == "" {
		cfg.MetadataType = defaultMetadataType(cfg.Backend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultMetadataType(b Backend) asgen.MetadataKind {
	switch b {
	case BackendRPMMD:
		return asgen.MetadataYAML
	default:
		return asgen.MetadataXML
	}
}

// warnUnknownKeys decodes the document as a generic yaml.Node tree and
// logs a warning for every top-level mapping key this module doesn't
// recognize, without failing the load (spec §6).
func warnUnknownKeys(ctx context.Context, data []byte) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		if !recognizedTopLevelKeys[key] {
			zlog.Warn(ctx).Str("key", key).Msg("ignoring unrecognized config key")
		}
	}
}

// Validate enforces the load-time preconditions spec §6 and §7 call
// out as fatal, global failures: an unknown backend, and an icon
// policy missing the mandatory 64x64/storeCached=true slot.
func (c *Config) Validate() error {
	if !knownBackends[c.Backend] {
		return asgen.NewError("config.Validate", asgen.ErrInvalid, fmt.Sprintf("unknown backend %q", c.Backend), nil)
	}
	if err := c.MetadataType.Validate(); err != nil {
		return asgen.NewError("config.Validate", asgen.ErrInvalid, "invalid MetadataType", err)
	}
	if c.WorkspaceDir == "" {
		return asgen.NewError("config.Validate", asgen.ErrInvalid, "WorkspaceDir is required", nil)
	}
	if len(c.Suites) == 0 {
		return asgen.NewError("config.Validate", asgen.ErrInvalid, "at least one suite must be configured", nil)
	}

	has64 := false
	for _, e := range c.IconPolicy {
		if e.Size == 64 && e.StoreCached {
			has64 = true
			break
		}
	}
	if !has64 {
		return asgen.NewError("config.Validate", asgen.ErrInvalid,
			"IconPolicy must contain a 64x64 entry with storeCached=true", nil)
	}
	return nil
}

// CacheDir is "<workspace>/cache/main" (spec §6 "On-disk layout").
func (c *Config) CacheDir() string { return c.WorkspaceDir + "/cache/main" }

// ContentsCacheDir is "<workspace>/cache/contents".
func (c *Config) ContentsCacheDir() string { return c.WorkspaceDir + "/cache/contents" }

// MediaDir is "<workspace>/export/media".
func (c *Config) MediaDir() string { return c.WorkspaceDir + "/export/media" }

// HTMLDir is "<workspace>/export/html".
func (c *Config) HTMLDir() string { return c.WorkspaceDir + "/export/html" }

// DataDir is "<workspace>/export/data/<suite>/<section>".
func (c *Config) DataDir(suite, section string) string {
	return c.WorkspaceDir + "/export/data/" + suite + "/" + section
}
