package asgen

// Kind enumerates the AppStream component kinds this module recognizes.
type Kind string

const (
	KindDesktopApp  Kind = "desktop-app"
	KindConsoleApp  Kind = "console-app"
	KindService     Kind = "service"
	KindAddon       Kind = "addon"
	KindFont        Kind = "font"
	KindCodec       Kind = "codec"
	KindInputMethod Kind = "input-method"
	KindFirmware    Kind = "firmware"
	KindGeneric     Kind = "generic"
)

// IconKind distinguishes a cached (locally written) icon entry from a
// remote one pointing at the media base URL.
type IconKind string

const (
	IconCached IconKind = "cached"
	IconRemote IconKind = "remote"
)

// Icon is one resolved icon entry attached to a Component.
type Icon struct {
	Kind   IconKind `json:"kind" yaml:"kind"`
	Name   string   `json:"name" yaml:"name"`
	Width  int      `json:"width" yaml:"width"`
	Height int      `json:"height" yaml:"height"`
	Scale  int      `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// ImageKind distinguishes a screenshot's full-size source render from a
// generated thumbnail.
type ImageKind string

const (
	ImageSource    ImageKind = "source"
	ImageThumbnail ImageKind = "thumbnail"
)

// ScreenshotImage is one rendered image or video belonging to a Screenshot.
type ScreenshotImage struct {
	Kind   ImageKind `json:"kind" yaml:"kind"`
	URL    string    `json:"url" yaml:"url"`
	Width  int       `json:"width" yaml:"width"`
	Height int       `json:"height" yaml:"height"`
}

// Screenshot is one component screenshot, carrying a caption and the
// rendered images/videos produced for it.
type Screenshot struct {
	Default bool              `json:"default,omitempty" yaml:"default,omitempty"`
	Caption string            `json:"caption,omitempty" yaml:"caption,omitempty"`
	Images  []ScreenshotImage `json:"images,omitempty" yaml:"images,omitempty"`
}

// Language is a locale with a translation-completion percentage,
// computed by the locale handler (spec §4.6 step 7).
type Language struct {
	Locale     string `json:"locale" yaml:"locale"`
	Percentage int    `json:"percentage" yaml:"percentage"`
}

// Launchable is an entry point a desktop environment can start the
// component from, e.g. a ".desktop" file id.
type Launchable struct {
	Kind  string   `json:"kind" yaml:"kind"`
	Entry []string `json:"entry" yaml:"entry"`
}

// Component is an AppStream component assembled by the metadata
// parsers (C4) and mutated by the icon/locale/font/screenshot
// handlers (C5/C6) until the extractor finalizes it.
type Component struct {
	ID          string `json:"id" yaml:"id"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	Name        string `json:"name" yaml:"name"`
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Icons       []Icon       `json:"icons,omitempty" yaml:"icons,omitempty"`
	Screenshots []Screenshot `json:"screenshots,omitempty" yaml:"screenshots,omitempty"`
	Languages   []Language   `json:"languages,omitempty" yaml:"languages,omitempty"`
	Launchables []Launchable `json:"launchables,omitempty" yaml:"launchables,omitempty"`

	// Provided is keyed by item kind ("mimetype", "font", "binary", ...).
	Provided map[string][]string `json:"provided,omitempty" yaml:"provided,omitempty"`
	Categories []string          `json:"categories,omitempty" yaml:"categories,omitempty"`

	// PackageName is the owning package's name, used to namespace
	// per-component icon filenames (spec §4.5 "Output").
	PackageName string `json:"package_name,omitempty" yaml:"package_name,omitempty"`

	// sources accumulates the byte slices that feed the fingerprint,
	// in the order they were recorded (metainfo, desktop, icon,
	// screenshot bytes per spec §3's gcid definition).
	sources [][]byte
}

// AddFingerprintSource appends bytes to the set that the component's
// content fingerprint is derived from. Order matters: callers must
// always append in the same order across runs for a gcid to be stable.
func (c *Component) AddFingerprintSource(b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	c.sources = append(c.sources, cp)
}

// FingerprintSources returns the recorded fingerprint source slices.
func (c *Component) FingerprintSources() [][]byte { return c.sources }

// HasIconOfSize reports whether c already carries a cached icon of
// exactly width x height at the given scale.
func (c *Component) HasIconOfSize(width, height, scale int) bool {
	for _, ic := range c.Icons {
		if ic.Kind == IconCached && ic.Width == width && ic.Height == height && ic.Scale == scale {
			return true
		}
	}
	return false
}

// LargestCachedIcon returns the cached icon with the largest width,
// used by the icon resolver's mandatory-64x64 downscale fallback
// (spec §4.5 "Mandatory 64x64").
func (c *Component) LargestCachedIcon() (Icon, bool) {
	var best Icon
	found := false
	for _, ic := range c.Icons {
		if ic.Kind != IconCached {
			continue
		}
		if !found || ic.Width > best.Width {
			best = ic
			found = true
		}
	}
	return best, found
}
