package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ximion/appstream-generator-sub002"
)

// connectTimeout and dataTimeout are the screenshot download timeouts
// from spec §5 ("30s/30s connect/data timeouts and retry budget").
const (
	connectTimeout = 30 * time.Second
	dataTimeout    = 30 * time.Second
	downloadRetries = 2
)

// thumbnailLadder is the fixed set of downscaled sizes generated for
// every screenshot source image (spec §4.6 step 6); it only downscales.
var thumbnailLadder = []struct{ Width, Height int }{
	{1248, 702}, {752, 423}, {624, 351}, {224, 126},
}

// allowedVideoContainers/Codecs enumerate the screenshot-video policy
// (spec §4.6 step 6: "checking container ∈ {WebM, Matroska}, video
// codec ∈ {AV1, VP9}, audio codec ∈ {none, Opus}").
var allowedVideoContainers = map[string]bool{"webm": true, "matroska": true}
var allowedVideoCodecs = map[string]bool{"av1": true, "vp9": true}
var allowedAudioCodecs = map[string]bool{"none": true, "opus": true}

// VideoProbe is the subset of ffprobe's output this generator checks.
type VideoProbe struct {
	Container  string
	VideoCodec string
	AudioCodec string
	SizeBytes  int64
}

// VideoProber probes a screenshot video (video probing is out of this
// module's scope per spec §1 Non-goals).
type VideoProber interface {
	Probe(ctx context.Context, data []byte) (VideoProbe, error)
}

// FFProbeVideoProber shells out to ffprobe, in the same
// exec.CommandContext + stdout-parsing style used for external tool
// invocation elsewhere in this generator's teacher lineage.
type FFProbeVideoProber struct {
	// Path overrides the ffprobe binary name, for tests.
	Path string
}

func (p FFProbeVideoProber) binary() string {
	if p.Path != "" {
		return p.Path
	}
	return "ffprobe"
}

// Probe writes data to a temp file and shells out to ffprobe for its
// container/codec names. The concrete flag set (-show_entries, -of
// csv) is deliberately narrow: this generator only ever needs the
// three fields it filters on.
func (p FFProbeVideoProber) Probe(ctx context.Context, data []byte) (VideoProbe, error) {
	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "quiet",
		"-print_format", "csv",
		"-show_entries", "format=format_name:stream=codec_type,codec_name",
		"pipe:0",
	)
	cmd.Stdin = bytes.NewReader(data)
	out, err := cmd.Output()
	if err != nil {
		return VideoProbe{}, asgen.NewError("handlers.FFProbeVideoProber.Probe", asgen.ErrTransient, "ffprobe invocation failed", err)
	}
	return parseFFProbeCSV(string(out), int64(len(data))), nil
}

func parseFFProbeCSV(out string, size int64) VideoProbe {
	vp := VideoProbe{SizeBytes: size, AudioCodec: "none"}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "format":
			vp.Container = strings.ToLower(fields[1])
		case "stream":
			if len(fields) < 3 {
				continue
			}
			switch fields[1] {
			case "video":
				vp.VideoCodec = strings.ToLower(fields[2])
			case "audio":
				vp.AudioCodec = strings.ToLower(fields[2])
			}
		}
	}
	return vp
}

// VideoAllowed reports whether vp passes the screenshot-video policy
// (spec §4.6 step 6), given the configured max size in MiB.
func VideoAllowed(vp VideoProbe, maxMiB int) bool {
	if !allowedVideoContainers[vp.Container] || !allowedVideoCodecs[vp.VideoCodec] || !allowedAudioCodecs[vp.AudioCodec] {
		return false
	}
	if maxMiB > 0 && vp.SizeBytes > int64(maxMiB)*1024*1024 {
		return false
	}
	return true
}

// ScreenshotHandler implements spec §4.6 step 6.
type ScreenshotHandler struct {
	Client *http.Client
	Prober VideoProber
}

// NewScreenshotHandler builds a handler whose http.Client applies the
// spec's connect/data timeout budget.
func NewScreenshotHandler(prober VideoProber) *ScreenshotHandler {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{DialContext: dialer.DialContext}
	return &ScreenshotHandler{
		Client: &http.Client{Transport: transport, Timeout: connectTimeout + dataTimeout},
		Prober: prober,
	}
}

// DownloadImage fetches url, retrying up to downloadRetries times on
// any failed attempt, a transport error or a non-200 status (spec §5
// "retry budget").
func (h *ScreenshotHandler) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= downloadRetries; attempt++ {
		data, err := h.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, asgen.NewError("handlers.ScreenshotHandler.DownloadImage", asgen.ErrTransient, "downloading screenshot failed after retries", lastErr)
}

func (h *ScreenshotHandler) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// RenderThumbnails decodes a screenshot source image and produces the
// fixed downscale-only thumbnail ladder (spec §4.6 step 6).
func (h *ScreenshotHandler) RenderThumbnails(source []byte) (map[string][]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, asgen.NewError("handlers.ScreenshotHandler.RenderThumbnails", asgen.ErrInvalid, "decoding screenshot source failed", err)
	}
	bounds := img.Bounds()
	out := make(map[string][]byte, len(thumbnailLadder))
	for _, sz := range thumbnailLadder {
		if sz.Width >= bounds.Dx() && sz.Height >= bounds.Dy() {
			continue // thumbnails only downscale
		}
		resized := imaging.Fit(img, sz.Width, sz.Height, imaging.Lanczos)
		var buf bytes.Buffer
		if err := png.Encode(&buf, resized); err != nil {
			return nil, asgen.NewError("handlers.ScreenshotHandler.RenderThumbnails", asgen.ErrInternal, "encoding thumbnail failed", err)
		}
		out[thumbKey(sz.Width, sz.Height)] = buf.Bytes()
	}
	return out, nil
}

func thumbKey(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}
