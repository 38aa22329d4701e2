// Package handlers implements the optional per-component post-processing
// steps the extractor runs after a component's core metadata is parsed
// (spec §4.6 steps 6-8, component C6): locale completion percentages,
// screenshot download/thumbnailing, and font sample rendering.
package handlers

import (
	"encoding/binary"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/ximion/appstream-generator-sub002"
)

// moMagicLE and moMagicBE are a gettext .mo file's first four bytes
// read as a little-endian uint32: moMagicLE for a little-endian file,
// moMagicBE for a big-endian one (spec §4.6 step 7).
const (
	moMagicLE = 0x950412de
	moMagicBE = 0xde120495
)

// MOStringCount reads a gettext .mo file's header and returns the
// number of translated strings it declares.
func MOStringCount(data []byte) (int, error) {
	if len(data) < 20 {
		return 0, asgen.NewError("handlers.MOStringCount", asgen.ErrInvalid, "mo file too short", nil)
	}
	var order binary.ByteOrder
	switch magic := binary.LittleEndian.Uint32(data[0:4]); magic {
	case moMagicLE:
		order = binary.LittleEndian
	case moMagicBE:
		order = binary.BigEndian
	default:
		return 0, asgen.NewError("handlers.MOStringCount", asgen.ErrInvalid, "unrecognized mo magic", nil)
	}
	// Header layout: magic(4) revision(4) nstrings(4) ...
	return int(order.Uint32(data[8:12])), nil
}

// LocaleHandler implements spec §4.6 step 7.
type LocaleHandler struct{}

// SumDomainCounts sums per-locale .mo string counts across every
// declared gettext translation domain ("sums string counts across
// declared <translation type=\"gettext\"> domains per locale").
func (LocaleHandler) SumDomainCounts(domainLocaleCounts map[string]map[string]int) map[string]int {
	totals := make(map[string]int)
	for _, localeCounts := range domainLocaleCounts {
		for locale, n := range localeCounts {
			totals[locale] += n
		}
	}
	return totals
}

// completionMinPercentage is the spec's inclusion threshold: "add
// language iff percentage > 25".
const completionMinPercentage = 25

// ApplyLanguages computes each locale's completion percentage as
// count*100/max(count) and attaches the ones above the threshold to c,
// in locale order for a stable result across runs.
func (LocaleHandler) ApplyLanguages(c *asgen.Component, counts map[string]int) {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return
	}
	locales := make([]string, 0, len(counts))
	for l := range counts {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		pct := counts[locale] * 100 / max
		if pct <= completionMinPercentage {
			continue
		}
		canon, ok := CanonicalizeLocale(locale)
		if !ok {
			continue
		}
		c.Languages = append(c.Languages, asgen.Language{Locale: canon, Percentage: pct})
	}
}

// CanonicalizeLocale validates and canonicalizes a locale tag via
// golang.org/x/text/language, after stripping the encoding suffixes
// the rest of this generator drops (".utf-8", trailing ".ISO*"), and
// rejecting the placeholder tags "x-test"/"xx" (spec §4.4 step 5,
// reused here since .mo domain directory names follow the same
// locale-naming convention as .desktop locale keys).
func CanonicalizeLocale(locale string) (string, bool) {
	key := normalizeLocaleKey(locale)
	if key == "" {
		return "", false
	}
	tag, err := language.Parse(key)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

func normalizeLocaleKey(locale string) string {
	if locale == "" {
		return ""
	}
	if lower := strings.ToLower(locale); lower == "x-test" || lower == "xx" {
		return ""
	}
	locale = strings.TrimSuffix(locale, ".utf-8")
	locale = strings.TrimSuffix(locale, ".UTF-8")
	if idx := strings.Index(locale, ".ISO"); idx >= 0 {
		locale = locale[:idx]
	}
	return locale
}
