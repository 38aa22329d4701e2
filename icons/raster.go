package icons

import (
	"path/filepath"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
)

// SourceKind is an icon source file's format, detected from its
// extension or magic bytes.
type SourceKind string

const (
	SourcePNG  SourceKind = "png"
	SourceJPEG SourceKind = "jpeg"
	SourceSVG  SourceKind = "svg"
	SourceSVGZ SourceKind = "svgz"
	SourceXPM  SourceKind = "xpm"
	SourceICO  SourceKind = "ico" // recognized, never rasterized (spec: "ico is excluded")
)

// Rasterizer renders a source image to an exact pixel size, returning
// PNG-encoded bytes. Rasterization itself is out of this module's
// scope (spec §4.5 "Rasterization" / spec.md design notes); concrete
// adapters live in the sibling raster package.
type Rasterizer interface {
	Rasterize(data []byte, kind SourceKind, width, height int) ([]byte, error)
}

// ErrUnsupportedSource is returned by a Rasterizer for a source kind it
// cannot handle (e.g. SVG/SVGZ without a real SVG renderer wired in).
func ErrUnsupportedSource(kind SourceKind) error {
	return asgen.NewError("icons.Rasterize", asgen.ErrInvalid, "unsupported icon source kind: "+string(kind), nil)
}

// classifySource maps a source file name's extension to a SourceKind.
// "allowed" reports whether the resolver should consider this
// extension at all (spec §4.5 "Source kinds allowed").
func classifySource(name string) (kind SourceKind, allowed bool) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".png":
		return SourcePNG, true
	case ".jpg", ".jpeg":
		return SourceJPEG, true
	case ".svg":
		return SourceSVG, true
	case ".svgz":
		return SourceSVGZ, true
	case ".xpm":
		return SourceXPM, true
	case ".ico":
		return SourceICO, false
	default:
		return "", false
	}
}
