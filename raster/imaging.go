// Package raster provides the default concrete icons.Rasterizer,
// adapting github.com/disintegration/imaging for the raster formats it
// can actually decode (spec §4.5 "Rasterization": image rasterization
// is explicitly out of the core's scope, specified only by the
// interface it consumes).
package raster

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/icons"
)

// ImagingRasterizer rasterizes PNG and JPEG sources via
// github.com/disintegration/imaging's Lanczos resampling. No SVG
// rasterizer exists anywhere in the retrieved reference pack, so
// SVG/SVGZ sources return ErrUnsupportedSource — production wiring is
// expected to inject a real SVG-capable implementation.
type ImagingRasterizer struct{}

var _ icons.Rasterizer = ImagingRasterizer{}

// Rasterize implements icons.Rasterizer.
func (ImagingRasterizer) Rasterize(data []byte, kind icons.SourceKind, width, height int) ([]byte, error) {
	switch kind {
	case icons.SourcePNG, icons.SourceJPEG:
		return rasterRasterImage(data, width, height)
	case icons.SourceSVG, icons.SourceSVGZ:
		return nil, icons.ErrUnsupportedSource(kind)
	case icons.SourceXPM:
		return nil, icons.ErrUnsupportedSource(kind)
	default:
		return nil, icons.ErrUnsupportedSource(kind)
	}
}

func rasterRasterImage(data []byte, width, height int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, asgen.NewError("raster.Rasterize", asgen.ErrInvalid, "decoding source image failed", err)
	}
	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, asgen.NewError("raster.Rasterize", asgen.ErrInternal, "encoding resized png failed", err)
	}
	return buf.Bytes(), nil
}
