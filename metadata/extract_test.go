package metadata

import (
	"testing"

	"github.com/ximion/appstream-generator-sub002"
)

func TestExtractMergesMatchingDesktopFile(t *testing.T) {
	metainfoFiles := map[string][]byte{
		"/usr/share/metainfo/org.example.foobar.metainfo.xml": []byte(
			`<component><id>org.example.foobar</id><name>FooBar</name></component>`),
	}
	desktopFiles := map[string][]byte{
		"/usr/share/applications/org.example.foobar.desktop": []byte(
			"[Desktop Entry]\nType=Application\nCategories=GTK;Utility;GNOME;\n"),
	}
	res := Extract(metainfoFiles, desktopFiles, ExtractOptions{})
	if len(res.Components) != 1 {
		t.Fatalf("Components = %d, want 1", len(res.Components))
	}
	c := res.Components[0]
	if c.ID != "org.example.foobar" || c.Name != "FooBar" {
		t.Errorf("component = %+v", c)
	}
	if len(c.Categories) != 1 || c.Categories[0] != "Utility" {
		t.Errorf("Categories = %v", c.Categories)
	}
}

func TestExtractMetainfoNoIDEmitsHint(t *testing.T) {
	metainfoFiles := map[string][]byte{
		"/usr/share/metainfo/bad.xml": []byte(`<component><name>Nope</name></component>`),
	}
	res := Extract(metainfoFiles, nil, ExtractOptions{})
	if len(res.Components) != 0 {
		t.Fatalf("Components = %d, want 0", len(res.Components))
	}
	if len(res.Hints) != 1 || res.Hints[0].Tag != "metainfo-no-id" {
		t.Fatalf("Hints = %+v", res.Hints)
	}
}

func TestExtractUnmatchedDesktopBecomesStandalone(t *testing.T) {
	desktopFiles := map[string][]byte{
		"/usr/share/applications/org.kde.ark.desktop": []byte(
			"[Desktop Entry]\nType=Application\nName=Ark\n"),
	}
	res := Extract(nil, desktopFiles, ExtractOptions{})
	if len(res.Components) != 1 {
		t.Fatalf("Components = %d, want 1", len(res.Components))
	}
	if res.Components[0].ID != "org.kde.ark" {
		t.Errorf("ID = %q", res.Components[0].ID)
	}
}

func TestExtractNoDisplayDroppedByDefault(t *testing.T) {
	desktopFiles := map[string][]byte{
		"/usr/share/applications/hidden.desktop": []byte(
			"[Desktop Entry]\nType=Application\nNoDisplay=true\n"),
	}
	res := Extract(nil, desktopFiles, ExtractOptions{})
	if len(res.Components) != 0 {
		t.Fatalf("Components = %d, want 0 (NoDisplay should drop it)", len(res.Components))
	}
}

func TestExtractGCIDChangesWhenDesktopFileJoins(t *testing.T) {
	data := []byte(`<component><id>org.example.foobar</id><name>FooBar</name></component>`)
	onlyMI := Extract(map[string][]byte{"a.xml": data}, nil, ExtractOptions{})
	withDesktop := Extract(
		map[string][]byte{"a.xml": data},
		map[string][]byte{"a.desktop": []byte("[Desktop Entry]\nType=Application\n")},
		ExtractOptions{},
	)
	fp1 := asgen.SumBytes(onlyMI.Components[0].FingerprintSources()...)
	fp2 := asgen.SumBytes(withDesktop.Components[0].FingerprintSources()...)
	if fp1.Hex() == fp2.Hex() {
		t.Error("fingerprint should change once desktop bytes are folded in")
	}
}
