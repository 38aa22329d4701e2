package metadata

import (
	"encoding/xml"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
)

// metainfoXML mirrors the subset of the AppStream metainfo schema this
// generator understands. Unknown elements/attributes are ignored by
// encoding/xml's default decoding, which is exactly the tolerant
// behavior the spec asks for ("collecting hints" rather than strict
// schema validation).
type metainfoXML struct {
	XMLName     xml.Name        `xml:"component"`
	Type        string          `xml:"type,attr"`
	ID          string          `xml:"id"`
	Names       []localizedText `xml:"name"`
	Summaries   []localizedText `xml:"summary"`
	Description rawInner        `xml:"description"`
	Icons       []xmlIcon       `xml:"icon"`
	Categories  []string        `xml:"categories>category"`
	Provides    xmlProvides     `xml:"provides"`
	Launchables []xmlLaunchable `xml:"launchable"`
	Screenshots []xmlScreenshot `xml:"screenshots>screenshot"`
	Languages   []xmlLanguage   `xml:"languages>lang"`
	Translations []xmlTranslation `xml:"translation"`
}

// xmlTranslation is a declared translation domain (spec §4.6 step 7:
// "sums string counts across declared <translation type=\"gettext\">
// domains per locale"). Only the gettext kind is meaningful to this
// generator; qt/other kinds are recognized but ignored.
type xmlTranslation struct {
	Kind  string `xml:"type,attr"`
	Entry string `xml:",chardata"`
}

type localizedText struct {
	Locale string `xml:"lang,attr"`
	Value  string `xml:",chardata"`
}

// rawInner captures an element's inner XML verbatim; metainfo
// <description> bodies are themselves a small set of HTML-ish tags
// (<p>, <ul><li>) that this generator stores opaquely rather than
// re-parsing.
type rawInner struct {
	Inner string `xml:",innerxml"`
}

type xmlIcon struct {
	Kind   string `xml:"type,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	Scale  int    `xml:"scale,attr"`
	Value  string `xml:",chardata"`
}

type xmlProvides struct {
	Binaries  []string `xml:"binary"`
	Mimetypes []string `xml:"mediatype"`
	Fonts     []string `xml:"font"`
	Modaliass []string `xml:"modalias"`
}

type xmlLaunchable struct {
	Kind  string `xml:"type,attr"`
	Entry string `xml:",chardata"`
}

type xmlScreenshot struct {
	Type    string          `xml:"type,attr"`
	Caption localizedText   `xml:"caption"`
	Images  []xmlScreenImg  `xml:"image"`
}

type xmlScreenImg struct {
	Kind   string `xml:"type,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	URL    string `xml:",chardata"`
}

type xmlLanguage struct {
	Percentage int    `xml:"percentage,attr"`
	Locale     string `xml:",chardata"`
}

// ParseMetainfo parses one metainfo XML document (spec §4.4 step 1). If
// the document has no cid, it returns the sentinel tag
// "metainfo-no-id" rather than an error, so the caller can emit the
// required hint and drop the file (spec §4.4: "If cid missing, emit
// hint metainfo-no-id and drop").
func ParseMetainfo(data []byte) (*asgen.Component, string, error) {
	var mi metainfoXML
	if err := xml.Unmarshal(data, &mi); err != nil {
		return nil, "metainfo-parse-error", asgen.NewError("metadata.ParseMetainfo", asgen.ErrInvalid, "malformed metainfo xml", err)
	}
	if strings.TrimSpace(mi.ID) == "" {
		return nil, "metainfo-no-id", nil
	}

	c := &asgen.Component{
		ID:          mi.ID,
		Kind:        componentKind(mi.Type),
		Provided:    map[string][]string{},
		Categories:  normalizeCategories(mi.Categories),
	}
	c.Name = firstLocalized(mi.Names, "")
	c.Summary = firstLocalized(mi.Summaries, "")
	c.Description = strings.TrimSpace(mi.Description.Inner)

	for _, ic := range mi.Icons {
		c.Icons = append(c.Icons, asgen.Icon{
			Kind:   iconKindFromString(ic.Kind),
			Name:   ic.Value,
			Width:  ic.Width,
			Height: ic.Height,
			Scale:  scaleOrDefault(ic.Scale),
		})
	}

	if len(mi.Provides.Binaries) > 0 {
		c.Provided["binary"] = mi.Provides.Binaries
	}
	if len(mi.Provides.Mimetypes) > 0 {
		c.Provided["mediatype"] = mi.Provides.Mimetypes
	}
	if len(mi.Provides.Fonts) > 0 {
		c.Provided["font"] = mi.Provides.Fonts
	}
	if len(mi.Provides.Modaliass) > 0 {
		c.Provided["modalias"] = mi.Provides.Modaliass
	}

	for _, l := range mi.Launchables {
		c.Launchables = append(c.Launchables, asgen.Launchable{Kind: l.Kind, Entry: []string{strings.TrimSpace(l.Entry)}})
	}

	for _, s := range mi.Screenshots {
		sc := asgen.Screenshot{Default: s.Type == "default", Caption: s.Caption.Value}
		for _, img := range s.Images {
			sc.Images = append(sc.Images, asgen.ScreenshotImage{
				Kind:   screenshotImageKind(img.Kind),
				URL:    strings.TrimSpace(img.URL),
				Width:  img.Width,
				Height: img.Height,
			})
		}
		c.Screenshots = append(c.Screenshots, sc)
	}

	for _, l := range mi.Languages {
		c.Languages = append(c.Languages, asgen.Language{Locale: strings.TrimSpace(l.Locale), Percentage: l.Percentage})
	}

	for _, t := range mi.Translations {
		if t.Kind != "" && t.Kind != "gettext" {
			continue
		}
		if domain := strings.TrimSpace(t.Entry); domain != "" {
			c.Provided["translation"] = append(c.Provided["translation"], domain)
		}
	}

	return c, "", nil
}

func componentKind(t string) asgen.Kind {
	switch t {
	case "desktop-application", "desktop":
		return asgen.KindDesktopApp
	case "console-application":
		return asgen.KindConsoleApp
	case "service":
		return asgen.KindService
	case "addon":
		return asgen.KindAddon
	case "font":
		return asgen.KindFont
	case "codec":
		return asgen.KindCodec
	case "inputmethod":
		return asgen.KindInputMethod
	case "firmware":
		return asgen.KindFirmware
	default:
		return asgen.KindGeneric
	}
}

func iconKindFromString(t string) asgen.IconKind {
	if t == "remote" {
		return asgen.IconRemote
	}
	return asgen.IconCached
}

func screenshotImageKind(t string) asgen.ImageKind {
	if t == "thumbnail" {
		return asgen.ImageThumbnail
	}
	return asgen.ImageSource
}

func scaleOrDefault(scale int) int {
	if scale <= 0 {
		return 1
	}
	return scale
}

func firstLocalized(texts []localizedText, locale string) string {
	for _, t := range texts {
		if t.Locale == locale {
			return strings.TrimSpace(t.Value)
		}
	}
	return ""
}
