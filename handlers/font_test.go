package handlers

import (
	"testing"

	"github.com/ximion/appstream-generator-sub002/icons"
)

type fakeFontRenderer struct {
	calls int
}

func (f *fakeFontRenderer) Languages(data []byte) ([]string, error) {
	return []string{"en", "de"}, nil
}

func (f *fakeFontRenderer) RenderSample(data []byte, text string, w, h int) ([]byte, error) {
	f.calls++
	return []byte("rendered"), nil
}

func TestFontHandlerProcess(t *testing.T) {
	renderer := &fakeFontRenderer{}
	h := FontHandler{Renderer: renderer}
	c := newTestComponent()

	res, err := h.Process(c, []byte("fontbytes"), "", []icons.Size{{Width: 64, Height: 64, Scale: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Languages) != 2 {
		t.Fatalf("Languages = %+v", c.Languages)
	}
	if len(res.IconSamples) != 1 {
		t.Errorf("IconSamples = %v", res.IconSamples)
	}
	if len(res.BannerImages) != len(bannerSizes) {
		t.Errorf("BannerImages = %v, want %d entries", res.BannerImages, len(bannerSizes))
	}
	// 1 icon size + len(bannerSizes) banner renders.
	if renderer.calls != 1+len(bannerSizes) {
		t.Errorf("renderer.calls = %d", renderer.calls)
	}
}
