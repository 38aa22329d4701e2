package icons

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/internal/inifmt"
)

// DirType is a theme subdirectory's declared sizing behavior, per the
// XDG icon theme specification.
type DirType string

const (
	DirFixed     DirType = "Fixed"
	DirScalable  DirType = "Scalable"
	DirThreshold DirType = "Threshold"
)

// ThemeDir is one subdirectory entry from a theme's index.theme.
type ThemeDir struct {
	Path      string
	Type      DirType
	Size      int
	Scale     int
	MinSize   int
	MaxSize   int
	Threshold int
	Context   string
}

// ThemeIndex is a parsed index.theme: its name, inheritance list, and
// directory entries in file order.
type ThemeIndex struct {
	Name      string
	Inherits  []string
	Dirs      []ThemeDir
}

// ParseThemeIndex parses an index.theme document (spec §4.5 step 2:
// "parsed per the XDG icon-theme spec"). It uses the same
// internal/inifmt scanner as .desktop files, since index.theme is the
// identical freedesktop key=value grammar.
func ParseThemeIndex(data []byte) (*ThemeIndex, error) {
	groups, err := inifmt.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, asgen.NewError("icons.ParseThemeIndex", asgen.ErrInvalid, "malformed index.theme", err)
	}
	main, ok := inifmt.Find(groups, "Icon Theme")
	if !ok {
		return nil, asgen.NewError("icons.ParseThemeIndex", asgen.ErrInvalid, "missing [Icon Theme] group", nil)
	}

	ti := &ThemeIndex{}
	ti.Name, _ = main.Value("Name")
	if v, ok := main.Value("Inherits"); ok {
		ti.Inherits = splitComma(v)
	}

	dirNames, _ := main.Value("Directories")
	for _, dirName := range splitComma(dirNames) {
		g, ok := inifmt.Find(groups, dirName)
		if !ok {
			continue
		}
		ti.Dirs = append(ti.Dirs, parseThemeDir(dirName, g))
	}
	return ti, nil
}

func parseThemeDir(name string, g inifmt.Group) ThemeDir {
	d := ThemeDir{Path: name, Type: DirThreshold, Scale: 1, Threshold: 2}
	if v, ok := g.Value("Size"); ok {
		d.Size = atoiOr(v, 0)
	}
	if v, ok := g.Value("Scale"); ok {
		d.Scale = atoiOr(v, 1)
	}
	if v, ok := g.Value("MinSize"); ok {
		d.MinSize = atoiOr(v, d.Size)
	} else {
		d.MinSize = d.Size
	}
	if v, ok := g.Value("MaxSize"); ok {
		d.MaxSize = atoiOr(v, d.Size)
	} else {
		d.MaxSize = d.Size
	}
	if v, ok := g.Value("Threshold"); ok {
		d.Threshold = atoiOr(v, 2)
	}
	if v, ok := g.Value("Context"); ok {
		d.Context = v
	}
	if v, ok := g.Value("Type"); ok {
		switch v {
		case string(DirFixed):
			d.Type = DirFixed
		case string(DirScalable):
			d.Type = DirScalable
		default:
			d.Type = DirThreshold
		}
	}
	return d
}

// MatchesSize reports whether d is usable for a request of (size,
// scale), following the XDG spec for Fixed/Scalable and a relaxed
// variant for Threshold (spec §4.5 "Size matching": "for Threshold we
// additionally allow downscaling from a larger declared size than the
// spec would admit").
func (d ThemeDir) MatchesSize(size, scale int) bool {
	if d.Scale != scale {
		return false
	}
	switch d.Type {
	case DirFixed:
		return d.Size == size
	case DirScalable:
		return d.MinSize <= size && size <= d.MaxSize
	default: // Threshold, relaxed
		if size >= d.Size {
			return size-d.Size <= d.Threshold
		}
		// Relaxed scaling: allow downscaling from any larger declared
		// size, not just within MinSize/Threshold of it.
		return d.Size-size <= d.Threshold || d.Size > size
	}
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
