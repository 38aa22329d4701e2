package handlers

import (
	"sync"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/icons"
)

// fontLibraryMu is a single process-global mutex guarding every
// FontRenderer call (spec §5 "Non-thread-safe font library": "Guard
// all calls behind one mutex; do not parallelize font processing
// within a package or across packages in the same worker pool").
var fontLibraryMu sync.Mutex

// FontRenderer renders a font file into sample images. Font rendering
// itself is out of this module's scope (spec §1 Non-goals); production
// wiring is expected to inject a FreeType-backed implementation.
type FontRenderer interface {
	// Languages returns the languages a font file declares support for.
	Languages(fontData []byte) ([]string, error)
	// RenderSample rasterizes sampleText at exactly width x height.
	RenderSample(fontData []byte, sampleText string, width, height int) ([]byte, error)
}

// defaultSampleText is rendered for a font's icon/banner previews
// unless a component overrides it via a custom metadata key (spec §4.6
// step 8: "render an icon sample (\"Aa\" by default, override via
// custom key)").
const defaultSampleText = "Aa"

// bannerSizes is the fixed screenshot-banner ladder font previews are
// rendered at (spec §4.6 step 8).
var bannerSizes = []icons.Size{{Width: 1024, Height: 78, Scale: 1}, {Width: 640, Height: 48, Scale: 1}}

// FontHandler implements spec §4.6 step 8 for components of kind font.
type FontHandler struct {
	Renderer FontRenderer
	Writer   icons.MediaWriter
}

// FontRenderResult is everything a font render pass produced for one
// font file.
type FontRenderResult struct {
	Languages    []string
	IconSamples  map[icons.Size][]byte // one icon preview per requested icon size
	BannerImages map[icons.Size][]byte
}

// Process discovers the font's declared languages, attaches them to c,
// and renders icon-size samples plus the fixed banner ladder. sampleText
// overrides the default "Aa" when non-empty.
func (h FontHandler) Process(c *asgen.Component, fontData []byte, sampleText string, iconSizes []icons.Size) (FontRenderResult, error) {
	if sampleText == "" {
		sampleText = defaultSampleText
	}

	fontLibraryMu.Lock()
	defer fontLibraryMu.Unlock()

	res := FontRenderResult{IconSamples: map[icons.Size][]byte{}, BannerImages: map[icons.Size][]byte{}}

	langs, err := h.Renderer.Languages(fontData)
	if err != nil {
		return res, asgen.NewError("handlers.FontHandler.Process", asgen.ErrTransient, "reading font languages failed", err)
	}
	res.Languages = langs
	for _, l := range langs {
		c.Languages = append(c.Languages, asgen.Language{Locale: l, Percentage: 100})
	}

	for _, size := range iconSizes {
		img, err := h.Renderer.RenderSample(fontData, sampleText, size.Width, size.Height)
		if err != nil {
			return res, asgen.NewError("handlers.FontHandler.Process", asgen.ErrTransient, "rendering font icon sample failed", err)
		}
		res.IconSamples[size] = img
	}

	for _, size := range bannerSizes {
		img, err := h.Renderer.RenderSample(fontData, sampleText, size.Width, size.Height)
		if err != nil {
			return res, asgen.NewError("handlers.FontHandler.Process", asgen.ErrTransient, "rendering font banner failed", err)
		}
		res.BannerImages[size] = img
	}

	return res, nil
}
