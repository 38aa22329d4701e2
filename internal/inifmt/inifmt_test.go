package inifmt

import (
	"strings"
	"testing"
)

const sample = `# comment
[Desktop Entry]
Type=Application
Name=Foo
Name[de]=Fu
; semicolon comment
Categories=Utility;

[Other Group]
Key=Value
`

func TestParseGroupsAndLocales(t *testing.T) {
	groups, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	g, ok := Find(groups, "Desktop Entry")
	if !ok {
		t.Fatal("missing Desktop Entry group")
	}
	if v, _ := g.Value("Type"); v != "Application" {
		t.Errorf("Type = %q", v)
	}
	names := g.Values("Name")
	if names[""] != "Foo" || names["de"] != "Fu" {
		t.Errorf("Name locales = %v", names)
	}
}

func TestParseDuplicateLocaleKeysPreserved(t *testing.T) {
	groups, err := Parse(strings.NewReader("[G]\nName=A\nName[de]=B\nName[fr]=C\n"))
	if err != nil {
		t.Fatal(err)
	}
	g, _ := Find(groups, "G")
	if len(g.Entries) != 3 {
		t.Fatalf("entries = %d, want 3 (textproto would have collapsed these)", len(g.Entries))
	}
}

func TestKeyValueBeforeAnyGroupIsDropped(t *testing.T) {
	groups, err := Parse(strings.NewReader("Key=Value\n[G]\nA=1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || len(groups[0].Entries) != 1 {
		t.Fatalf("groups = %+v", groups)
	}
}
