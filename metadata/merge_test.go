package metadata

import (
	"reflect"
	"testing"

	"github.com/ximion/appstream-generator-sub002"
)

// TestMergeScenarioS2 mirrors the spec's worked example: a package with
// both a metainfo document (id, Name, no Categories) and a matching
// .desktop file (Categories=GTK;Utility;GNOME;) merges into a single
// component keeping the metainfo Name and the desktop's filtered
// Categories.
func TestMergeScenarioS2(t *testing.T) {
	mi := `<?xml version="1.0"?>
<component>
  <id>org.example.foobar</id>
  <name>FooBar</name>
</component>`
	c, hint, err := ParseMetainfo([]byte(mi))
	if err != nil || hint != "" {
		t.Fatalf("ParseMetainfo: c=%v hint=%q err=%v", c, hint, err)
	}

	de, err := ParseDesktopEntry([]byte("[Desktop Entry]\nType=Application\nCategories=GTK;Utility;GNOME;\n"))
	if err != nil {
		t.Fatal(err)
	}

	MergeDesktopIntoMetainfo(c, de)

	if c.ID != "org.example.foobar" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Name != "FooBar" {
		t.Errorf("Name = %q, want FooBar (metainfo wins)", c.Name)
	}
	if want := []string{"Utility"}; !reflect.DeepEqual(c.Categories, want) {
		t.Errorf("Categories = %v, want %v", c.Categories, want)
	}
}

func TestMergeDesktopFillsIconGap(t *testing.T) {
	c := &asgen.Component{ID: "org.example.foo", Name: "Foo"}
	e := &desktopEntry{Icon: "foo-icon"}
	MergeDesktopIntoMetainfo(c, e)
	if len(c.Icons) != 1 || c.Icons[0].Name != "foo-icon" {
		t.Errorf("Icons = %+v", c.Icons)
	}
}

func TestComponentFromStandaloneDesktop(t *testing.T) {
	e := &desktopEntry{
		Type:       "Application",
		Names:      map[string]string{"": "Standalone"},
		Categories: []string{"Utility"},
	}
	c := ComponentFromStandaloneDesktop("standalone.desktop", e)
	if c.ID != "standalone.desktop" || c.Name != "Standalone" || c.Kind != asgen.KindDesktopApp {
		t.Errorf("component = %+v", c)
	}
}
