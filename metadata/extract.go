package metadata

import (
	"sort"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
)

// HintRecord is one issue raised while extracting a package's metadata
// files, not yet attached to a result.Aggregator (callers translate
// these into Aggregator.AddHint calls so metadata stays free of the
// result package).
type HintRecord struct {
	CID string
	Tag string
}

// ExtractOptions configures the per-package extraction flow (spec
// §4.4 step 4's "ignoreNoDisplay" call-path flag, spec §8 boundary
// behavior).
type ExtractOptions struct {
	IgnoreNoDisplay bool
}

// ExtractResult is the outcome of joining a package's metainfo and
// desktop files into components (spec §4.4).
type ExtractResult struct {
	Components []*asgen.Component
	Hints      []HintRecord
}

// Extract runs the full metainfo/desktop join described in spec §4.4:
// parse every metainfo file (dropping cid-less or malformed ones with
// a hint), merge matching .desktop files in (matched by cid, else by
// file base name), and promote any remaining
// unmatched, eligible .desktop file into its own standalone component.
//
// metainfoFiles and desktopFiles are keyed by their path within the
// package (spec §4.4 "Inputs": fixed prefixes
// /usr/share/metainfo/*.xml, /usr/share/appdata/*.xml,
// /usr/share/applications/*.desktop).
func Extract(metainfoFiles, desktopFiles map[string][]byte, opts ExtractOptions) ExtractResult {
	var res ExtractResult

	desktopByKey := make(map[string]string, len(desktopFiles))  // match key -> path
	desktopByBase := make(map[string]string, len(desktopFiles)) // file base without .desktop -> path
	matched := make(map[string]bool, len(desktopFiles))
	for p := range desktopFiles {
		desktopByKey[ComponentIDFromDesktopPath(p)] = p
		desktopByBase[strings.TrimSuffix(p[strings.LastIndex(p, "/")+1:], ".desktop")] = p
	}

	// Deterministic order: iterate metainfo paths sorted, so gcids and
	// hint ordering don't depend on map iteration order.
	miPaths := sortedKeys(metainfoFiles)
	for _, path := range miPaths {
		data := metainfoFiles[path]
		c, hintTag, err := ParseMetainfo(data)
		if err != nil || hintTag != "" {
			res.Hints = append(res.Hints, HintRecord{CID: asgen.GeneralCID, Tag: nonEmpty(hintTag, "metainfo-parse-error")})
			continue
		}
		c.AddFingerprintSource(data)

		dp, ok := desktopByKey[c.ID]
		if !ok {
			base := path[strings.LastIndex(path, "/")+1:]
			base = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(base, ".xml"), ".metainfo"), ".appdata")
			dp, ok = desktopByBase[base]
		}
		if ok {
			if de, err := ParseDesktopEntry(desktopFiles[dp]); err == nil {
				MergeDesktopIntoMetainfo(c, de)
				c.AddFingerprintSource(desktopFiles[dp])
				matched[dp] = true
			} else {
				res.Hints = append(res.Hints, HintRecord{CID: c.ID, Tag: "desktop-file-error"})
			}
		}
		res.Components = append(res.Components, c)
	}

	for _, path := range sortedKeys(desktopFiles) {
		if matched[path] {
			continue
		}
		data := desktopFiles[path]
		de, err := ParseDesktopEntry(data)
		if err != nil {
			res.Hints = append(res.Hints, HintRecord{CID: asgen.GeneralCID, Tag: "desktop-file-error"})
			continue
		}
		if !ShouldCreateStandaloneComponent(de, opts.IgnoreNoDisplay) {
			continue
		}
		cid := ComponentIDFromDesktopPath(path)
		c := ComponentFromStandaloneDesktop(cid, de)
		c.AddFingerprintSource(data)
		res.Components = append(res.Components, c)
	}

	return res
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
