package metadata

import (
	"bytes"
	"path"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/internal/inifmt"
)

// desktopEntry is the subset of a freedesktop .desktop file this
// generator cares about (spec §4.4).
type desktopEntry struct {
	Type          string
	NoDisplay     bool
	IgnoreAppstream bool
	Names         map[string]string
	Comments      map[string]string // maps to Summary
	Categories    []string
	Keywords      []string
	MimeTypes     []string
	Icon          string
}

// categoryBlacklist is dropped from desktop Categories before merging
// (spec §4.4 step 2: "subject to blacklist of GTK, Qt, GNOME, KDE, GUI,
// Application and x-* prefixes").
var categoryBlacklist = map[string]struct{}{
	"GTK": {}, "Qt": {}, "GNOME": {}, "KDE": {}, "GUI": {}, "Application": {},
}

// ParseDesktopEntry parses one .desktop file's "[Desktop Entry]" group.
func ParseDesktopEntry(data []byte) (*desktopEntry, error) {
	groups, err := inifmt.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, asgen.NewError("metadata.ParseDesktopEntry", asgen.ErrInvalid, "malformed desktop entry", err)
	}
	g, ok := inifmt.Find(groups, "Desktop Entry")
	if !ok {
		return nil, asgen.NewError("metadata.ParseDesktopEntry", asgen.ErrInvalid, "missing [Desktop Entry] group", nil)
	}

	e := &desktopEntry{
		Names:    validLocaleMap(g.Values("Name")),
		Comments: validLocaleMap(g.Values("Comment")),
	}
	e.Type, _ = g.Value("Type")
	if v, ok := g.Value("NoDisplay"); ok {
		e.NoDisplay = v == "true"
	}
	if v, ok := g.Value("X-AppStream-Ignore"); ok {
		e.IgnoreAppstream = v == "true"
	}
	if v, ok := g.Value("Categories"); ok {
		e.Categories = normalizeCategories(splitSemicolon(v))
	}
	if v, ok := g.Value("Keywords"); ok {
		e.Keywords = splitSemicolon(v)
	}
	if v, ok := g.Value("MimeType"); ok {
		e.MimeTypes = splitSemicolon(v)
	}
	e.Icon, _ = g.Value("Icon")

	return e, nil
}

// ComponentIDFromDesktopPath derives a standalone component id from a
// .desktop file's basename, stripping the trailing ".desktop" only when
// the remaining base is already in reverse-DNS form (spec §4.4 step 4:
// "id = filename base, with trailing .desktop stripped iff the base is
// in reverse-DNS form").
func ComponentIDFromDesktopPath(filePath string) string {
	base := path.Base(filePath)
	trimmed := strings.TrimSuffix(base, ".desktop")
	if trimmed != base && looksReverseDNS(trimmed) {
		return trimmed
	}
	return base
}

func looksReverseDNS(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// ShouldCreateStandaloneComponent applies spec §4.4 step 4's guard for
// unmatched .desktop files: "Type=Application, NoDisplay≠true,
// X-AppStream-Ignore≠true". ignoreNoDisplay lets a caller (e.g. a future
// debug mode) bypass the NoDisplay exclusion, mirroring the
// "ignoreNoDisplay" call-path flag from spec §8 S?.
func ShouldCreateStandaloneComponent(e *desktopEntry, ignoreNoDisplay bool) bool {
	if e.Type != "Application" && e.Type != "" {
		return false
	}
	if e.IgnoreAppstream {
		return false
	}
	if e.NoDisplay && !ignoreNoDisplay {
		return false
	}
	return true
}

func splitSemicolon(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeCategories drops blacklisted categories and any "x-"
// prefixed category (spec §4.4 step 2).
func normalizeCategories(cats []string) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		if _, blacklisted := categoryBlacklist[c]; blacklisted {
			continue
		}
		if strings.HasPrefix(strings.ToLower(c), "x-") {
			continue
		}
		out = append(out, c)
	}
	return out
}

// validLocaleMap filters a raw locale->value map to the locale keys the
// spec considers meaningful (spec §4.4 step 5): drop "x-test"/"xx",
// strip ".utf-8" and trailing ".ISO*" encoding suffixes.
func validLocaleMap(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for locale, value := range raw {
		if locale == "" {
			out[""] = value // the unlocalized value
			continue
		}
		key := normalizeLocaleKey(locale)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func normalizeLocaleKey(locale string) string {
	if locale == "" {
		return ""
	}
	lower := strings.ToLower(locale)
	if lower == "x-test" || lower == "xx" {
		return ""
	}
	locale = strings.TrimSuffix(locale, ".utf-8")
	locale = strings.TrimSuffix(locale, ".UTF-8")
	if idx := strings.Index(locale, ".ISO"); idx >= 0 {
		locale = locale[:idx]
	}
	return locale
}
