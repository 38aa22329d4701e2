package metadata

import "testing"

const sampleMetainfo = `<?xml version="1.0" encoding="UTF-8"?>
<component type="desktop-application">
  <id>org.example.foobar</id>
  <name>FooBar</name>
  <summary>Does foo and bar</summary>
  <description><p>Long form description.</p></description>
  <icon type="cached" width="64" height="64">foobar.png</icon>
  <provides>
    <binary>foobar</binary>
    <mediatype>text/x-foo</mediatype>
  </provides>
  <launchable type="desktop-id">org.example.foobar.desktop</launchable>
  <screenshots>
    <screenshot type="default">
      <caption>Main window</caption>
      <image type="source" width="800" height="600">https://example.org/shot.png</image>
    </screenshot>
  </screenshots>
  <languages>
    <lang percentage="80">de</lang>
  </languages>
</component>
`

func TestParseMetainfoBasic(t *testing.T) {
	c, hint, err := ParseMetainfo([]byte(sampleMetainfo))
	if err != nil {
		t.Fatal(err)
	}
	if hint != "" {
		t.Fatalf("unexpected hint: %s", hint)
	}
	if c.ID != "org.example.foobar" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Name != "FooBar" || c.Summary != "Does foo and bar" {
		t.Errorf("Name/Summary = %q/%q", c.Name, c.Summary)
	}
	if len(c.Icons) != 1 || c.Icons[0].Width != 64 {
		t.Errorf("Icons = %+v", c.Icons)
	}
	if len(c.Provided["binary"]) != 1 || c.Provided["binary"][0] != "foobar" {
		t.Errorf("Provided[binary] = %v", c.Provided["binary"])
	}
	if len(c.Launchables) != 1 || len(c.Launchables[0].Entry) != 1 || c.Launchables[0].Entry[0] != "org.example.foobar.desktop" {
		t.Errorf("Launchables = %+v", c.Launchables)
	}
	if len(c.Screenshots) != 1 || len(c.Screenshots[0].Images) != 1 {
		t.Errorf("Screenshots = %+v", c.Screenshots)
	}
	if len(c.Languages) != 1 || c.Languages[0].Percentage != 80 {
		t.Errorf("Languages = %+v", c.Languages)
	}
}

func TestParseMetainfoMissingIDYieldsHint(t *testing.T) {
	c, hint, err := ParseMetainfo([]byte(`<component><name>Nope</name></component>`))
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("expected nil component, got %+v", c)
	}
	if hint != "metainfo-no-id" {
		t.Errorf("hint = %q, want metainfo-no-id", hint)
	}
}

func TestParseMetainfoMalformedXML(t *testing.T) {
	_, hint, err := ParseMetainfo([]byte(`<component><id>x</id`))
	if err == nil {
		t.Fatal("expected error for malformed xml")
	}
	if hint != "metainfo-parse-error" {
		t.Errorf("hint = %q, want metainfo-parse-error", hint)
	}
}
