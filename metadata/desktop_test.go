package metadata

import (
	"testing"
)

const sampleDesktop = `[Desktop Entry]
Type=Application
Name=FooBar
Name[de]=FuBar
Comment=Does foo and bar
Categories=GTK;Utility;GNOME;
Keywords=foo;bar;
MimeType=text/x-foo;
Icon=foobar
NoDisplay=false
`

func TestParseDesktopEntryBasic(t *testing.T) {
	e, err := ParseDesktopEntry([]byte(sampleDesktop))
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != "Application" {
		t.Errorf("Type = %q", e.Type)
	}
	if e.Names[""] != "FooBar" || e.Names["de"] != "FuBar" {
		t.Errorf("Names = %v", e.Names)
	}
	if got := e.Categories; len(got) != 1 || got[0] != "Utility" {
		t.Errorf("Categories = %v, want [Utility] (GTK/GNOME blacklisted)", got)
	}
	if len(e.Keywords) != 2 {
		t.Errorf("Keywords = %v", e.Keywords)
	}
	if e.Icon != "foobar" {
		t.Errorf("Icon = %q", e.Icon)
	}
}

func TestParseDesktopEntryMissingGroup(t *testing.T) {
	_, err := ParseDesktopEntry([]byte("[Other Group]\nFoo=bar\n"))
	if err == nil {
		t.Fatal("expected error for missing [Desktop Entry] group")
	}
}

func TestLocaleKeyNormalization(t *testing.T) {
	raw := map[string]string{
		"":           "Default",
		"de.utf-8":   "German UTF8",
		"x-test":     "Test",
		"xx":         "Placeholder",
		"fr.ISO8859": "French ISO",
	}
	got := validLocaleMap(raw)
	if _, ok := got["x-test"]; ok {
		t.Error("x-test locale should be dropped")
	}
	if _, ok := got["xx"]; ok {
		t.Error("xx locale should be dropped")
	}
	if _, ok := got["de.utf-8"]; ok {
		t.Error(".utf-8 suffix should be stripped from the key")
	}
	if v, ok := got["de"]; !ok || v != "German UTF8" {
		t.Errorf("expected de.utf-8 to normalize into de, got %v", got)
	}
	if _, ok := got["fr.ISO8859"]; ok {
		t.Error(".ISO* suffix should be stripped from the key")
	}
	if _, ok := got["fr"]; !ok {
		t.Error("expected fr.ISO8859 to normalize into fr")
	}
}

func TestComponentIDFromDesktopPath(t *testing.T) {
	cases := []struct{ path, want string }{
		{"/usr/share/applications/org.kde.ark.desktop", "org.kde.ark"},
		{"/usr/share/applications/foobar.desktop", "foobar.desktop"},
		{"/usr/share/applications/ab.desktop", "ab.desktop"},
	}
	for _, tc := range cases {
		if got := ComponentIDFromDesktopPath(tc.path); got != tc.want {
			t.Errorf("ComponentIDFromDesktopPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestShouldCreateStandaloneComponent(t *testing.T) {
	app := &desktopEntry{Type: "Application"}
	if !ShouldCreateStandaloneComponent(app, false) {
		t.Error("plain Application entry should become a standalone component")
	}
	hidden := &desktopEntry{Type: "Application", NoDisplay: true}
	if ShouldCreateStandaloneComponent(hidden, false) {
		t.Error("NoDisplay entry should be excluded by default")
	}
	if !ShouldCreateStandaloneComponent(hidden, true) {
		t.Error("NoDisplay entry should be included when ignoreNoDisplay is set")
	}
	ignored := &desktopEntry{Type: "Application", IgnoreAppstream: true}
	if ShouldCreateStandaloneComponent(ignored, true) {
		t.Error("X-AppStream-Ignore entry should never be included")
	}
	link := &desktopEntry{Type: "Link"}
	if ShouldCreateStandaloneComponent(link, false) {
		t.Error("non-Application entries should be excluded")
	}
}
