package pipeline

import (
	"bytes"
	"encoding/xml"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ximion/appstream-generator-sub002"
)

// xmlComponent is the single-component AppStream XML shape this
// generator serializes into the metadata_xml CAS database (spec §3
// "metadata_xml: gcid -> serialized single-component XML"). Producing
// an AppStream-conformant document is explicitly the job of "the
// external AppStream library" (spec §1 Non-goals); no such library
// exists anywhere in the retrieved pack, so this is a minimal faithful
// rendering of the fields this module's Component type actually
// carries, not a full AppStream schema implementation.
type xmlComponent struct {
	XMLName     xml.Name      `xml:"component"`
	Type        string        `xml:"type,attr,omitempty"`
	ID          string        `xml:"id"`
	Name        string        `xml:"name"`
	Summary     string        `xml:"summary,omitempty"`
	Description string        `xml:"description,omitempty"`
	Icons       []xmlIcon     `xml:"icon,omitempty"`
	Screenshots []xmlScreens  `xml:"screenshots>screenshot,omitempty"`
	Languages   []xmlLanguage `xml:"languages>lang,omitempty"`
	Launchables []xmlLaunch   `xml:"launchable,omitempty"`
	Provides    *xmlProvides  `xml:"provides,omitempty"`
	Categories  []string      `xml:"categories>category,omitempty"`
	PkgName     string        `xml:"pkgname,omitempty"`
}

type xmlIcon struct {
	Kind   string `xml:"type,attr"`
	Width  int    `xml:"width,attr,omitempty"`
	Height int    `xml:"height,attr,omitempty"`
	Scale  int    `xml:"scale,attr,omitempty"`
	Value  string `xml:",chardata"`
}

type xmlScreens struct {
	Default bool       `xml:"default,attr,omitempty"`
	Caption string      `xml:"caption,omitempty"`
	Images  []xmlSImage `xml:"image"`
}

type xmlSImage struct {
	Kind   string `xml:"type,attr"`
	Width  int    `xml:"width,attr,omitempty"`
	Height int    `xml:"height,attr,omitempty"`
	Value  string `xml:",chardata"`
}

type xmlLanguage struct {
	Percentage int    `xml:"percentage,attr"`
	Value      string `xml:",chardata"`
}

type xmlLaunch struct {
	Kind  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlProvides struct {
	Items []xmlProvidesItem `xml:",any"`
}

type xmlProvidesItem struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// toXMLComponent flattens a Component into its XML-serializable shape,
// sorting map-derived slices so output is stable across runs (spec §8
// invariant 4: "identical after sorting keys").
func toXMLComponent(c *asgen.Component) xmlComponent {
	out := xmlComponent{
		XMLName:     xml.Name{Local: "component"},
		Type:        string(c.Kind),
		ID:          c.ID,
		Name:        c.Name,
		Summary:     c.Summary,
		Description: c.Description,
		PkgName:     c.PackageName,
	}
	for _, ic := range c.Icons {
		out.Icons = append(out.Icons, xmlIcon{Kind: string(ic.Kind), Width: ic.Width, Height: ic.Height, Scale: ic.Scale, Value: ic.Name})
	}
	for _, sc := range c.Screenshots {
		xsc := xmlScreens{Default: sc.Default, Caption: sc.Caption}
		for _, img := range sc.Images {
			xsc.Images = append(xsc.Images, xmlSImage{Kind: string(img.Kind), Width: img.Width, Height: img.Height, Value: img.URL})
		}
		out.Screenshots = append(out.Screenshots, xsc)
	}
	for _, lang := range c.Languages {
		out.Languages = append(out.Languages, xmlLanguage{Percentage: lang.Percentage, Value: lang.Locale})
	}
	for _, l := range c.Launchables {
		for _, entry := range l.Entry {
			out.Launchables = append(out.Launchables, xmlLaunch{Kind: l.Kind, Value: entry})
		}
	}
	if len(c.Provided) > 0 {
		out.Provides = &xmlProvides{}
		kinds := make([]string, 0, len(c.Provided))
		for k := range c.Provided {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			values := append([]string(nil), c.Provided[k]...)
			sort.Strings(values)
			for _, v := range values {
				out.Provides.Items = append(out.Provides.Items, xmlProvidesItem{XMLName: xml.Name{Local: k}, Value: v})
			}
		}
	}
	out.Categories = append([]string(nil), c.Categories...)
	sort.Strings(out.Categories)
	return out
}

// serializeComponent renders one finalized component as an
// independently stored (kind, gcid) payload (spec §9's "Open question"
// redesign: both kinds are stored, each keyed by (kind, gcid)).
func serializeComponent(c *asgen.Component, gcid string, kind asgen.MetadataKind) ([]byte, error) {
	switch kind {
	case asgen.MetadataXML:
		var buf bytes.Buffer
		enc := xml.NewEncoder(&buf)
		enc.Indent("", "  ")
		if err := enc.Encode(toXMLComponent(c)); err != nil {
			return nil, asgen.NewError("pipeline.serializeComponent", asgen.ErrInternal, "encoding component xml failed", err)
		}
		return buf.Bytes(), nil
	case asgen.MetadataYAML:
		data, err := yaml.Marshal(c)
		if err != nil {
			return nil, asgen.NewError("pipeline.serializeComponent", asgen.ErrInternal, "encoding component yaml failed", err)
		}
		return data, nil
	default:
		return nil, asgen.NewError("pipeline.serializeComponent", asgen.ErrInvalid, "unknown metadata kind", nil)
	}
}
