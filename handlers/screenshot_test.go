package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseFFProbeCSV(t *testing.T) {
	out := "format,webm\nstream,video,vp9\nstream,audio,opus\n"
	vp := parseFFProbeCSV(out, 1024)
	if vp.Container != "webm" || vp.VideoCodec != "vp9" || vp.AudioCodec != "opus" {
		t.Errorf("vp = %+v", vp)
	}
}

func TestVideoAllowedPolicy(t *testing.T) {
	ok := VideoProbe{Container: "webm", VideoCodec: "vp9", AudioCodec: "none", SizeBytes: 100}
	if !VideoAllowed(ok, 0) {
		t.Error("expected allowed webm/vp9/none to pass")
	}
	bad := VideoProbe{Container: "mp4", VideoCodec: "h264", AudioCodec: "aac"}
	if VideoAllowed(bad, 0) {
		t.Error("expected mp4/h264/aac to be rejected")
	}
	tooBig := VideoProbe{Container: "webm", VideoCodec: "av1", AudioCodec: "opus", SizeBytes: 10 * 1024 * 1024}
	if VideoAllowed(tooBig, 5) {
		t.Error("expected oversized video to be rejected against a 5 MiB cap")
	}
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	h := NewScreenshotHandler(FFProbeVideoProber{})
	data, err := h.DownloadImage(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestDownloadImageRetriesOnFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	h := NewScreenshotHandler(FFProbeVideoProber{})
	data, err := h.DownloadImage(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok" {
		t.Errorf("data = %q", data)
	}
	if attempts < 2 {
		t.Errorf("attempts = %d, want at least 2", attempts)
	}
}

func TestRenderThumbnailsOnlyDownscales(t *testing.T) {
	h := NewScreenshotHandler(FFProbeVideoProber{})
	src := samplePNG(t, 200, 100)
	thumbs, err := h.RenderThumbnails(src)
	if err != nil {
		t.Fatal(err)
	}
	// Every ladder rung is larger than the 200x100 source, so nothing
	// should be produced (thumbnails only downscale).
	if len(thumbs) != 0 {
		t.Errorf("thumbs = %v, want none for a source smaller than every rung", thumbs)
	}

	big := samplePNG(t, 2000, 1500)
	thumbs, err = h.RenderThumbnails(big)
	if err != nil {
		t.Fatal(err)
	}
	if len(thumbs) != len(thumbnailLadder) {
		t.Errorf("thumbs = %v, want %d entries", thumbs, len(thumbnailLadder))
	}
}
