package metadata

import (
	"github.com/ximion/appstream-generator-sub002"
)

// MergeDesktopIntoMetainfo folds a matched .desktop entry into a
// component already built from metainfo XML (spec §4.4 step 2):
// "desktop provides fallback Name/Summary, Categories, Keywords,
// MimeType, Icon. Metainfo fields always win; desktop fills gaps."
func MergeDesktopIntoMetainfo(c *asgen.Component, e *desktopEntry) {
	if c.Name == "" {
		c.Name = e.Names[""]
	}
	if c.Summary == "" {
		c.Summary = e.Comments[""]
	}
	if len(c.Categories) == 0 {
		c.Categories = e.Categories
	}
	if len(c.Icons) == 0 && e.Icon != "" {
		c.Icons = append(c.Icons, asgen.Icon{Kind: asgen.IconCached, Name: e.Icon})
	}
	if c.Provided == nil {
		c.Provided = map[string][]string{}
	}
	if len(e.Keywords) > 0 {
		if _, ok := c.Provided["keyword"]; !ok {
			c.Provided["keyword"] = e.Keywords
		}
	}
	if len(e.MimeTypes) > 0 {
		if _, ok := c.Provided["mediatype"]; !ok {
			c.Provided["mediatype"] = e.MimeTypes
		}
	}
}

// ComponentFromStandaloneDesktop builds a new desktop-app component
// directly from an unmatched .desktop file (spec §4.4 step 4).
func ComponentFromStandaloneDesktop(cid string, e *desktopEntry) *asgen.Component {
	c := &asgen.Component{
		ID:         cid,
		Kind:       asgen.KindDesktopApp,
		Name:       e.Names[""],
		Summary:    e.Comments[""],
		Categories: e.Categories,
		Provided:   map[string][]string{},
	}
	if e.Icon != "" {
		c.Icons = append(c.Icons, asgen.Icon{Kind: asgen.IconCached, Name: e.Icon})
	}
	if len(e.Keywords) > 0 {
		c.Provided["keyword"] = e.Keywords
	}
	if len(e.MimeTypes) > 0 {
		c.Provided["mediatype"] = e.MimeTypes
	}
	return c
}

// MatchKey returns the join key used to pair a desktop entry's source
// path with a metainfo component (spec §4.4 step 2: "Match by cid (or
// filename base) against discovered .desktop files").
func MatchKey(cidOrBase string) string { return cidOrBase }
