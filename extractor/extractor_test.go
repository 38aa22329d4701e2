package extractor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend/dummy"
	"github.com/ximion/appstream-generator-sub002/cas"
	"github.com/ximion/appstream-generator-sub002/icons"
)

const sampleMetainfo = `<?xml version="1.0"?>
<component type="desktop-application">
  <id>org.example.foobar</id>
  <name>Foobar</name>
  <summary>A foo for your bar</summary>
  <icon type="cached">foobar.png</icon>
  <translation type="gettext">foobar</translation>
</component>
`

// fakeRasterizer mirrors icons.resolve_test.go's fake: it never touches
// real image data, it just records that it was asked to render.
type fakeRasterizer struct{ calls int }

func (f *fakeRasterizer) Rasterize(data []byte, kind icons.SourceKind, width, height int) ([]byte, error) {
	f.calls++
	return []byte("fake-png"), nil
}

// permissiveRegistry accepts every tag as known and never treats one as
// an error, so Finalize never drops a component in these tests.
type permissiveRegistry struct{}

func (permissiveRegistry) Known(tag string) bool  { return true }
func (permissiveRegistry) IsError(tag string) bool { return false }

func newCAS(t *testing.T) *cas.Store {
	t.Helper()
	store, err := cas.Open(context.Background(), t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProcessParsesMetainfoAndResolvesIcon(t *testing.T) {
	hicolor, err := icons.LoadHicolorTheme()
	if err != nil {
		t.Fatal(err)
	}
	pkid := asgen.NewPackageID("foobar", "1.0", "amd64")
	pkg := &dummy.Package{
		Pkid:       pkid,
		PkgName:    "foobar",
		PkgVersion: "1.0",
		PkgArch:    "amd64",
		PkgFiles: map[string][]byte{
			"/usr/share/metainfo/org.example.foobar.metainfo.xml": []byte(sampleMetainfo),
		},
	}

	raster := &fakeRasterizer{}
	store := newCAS(t)
	e := &Extractor{
		CAS: store,
		IconsMap: map[string]asgen.PackageID{
			"/usr/share/icons/hicolor/64x64/apps/foobar.png": pkid,
		},
		Fetch: func(p asgen.PackageID, path string) ([]byte, error) {
			return []byte("icon-src"), nil
		},
		IconThemes: []*icons.ThemeIndex{hicolor},
		Raster:     raster,
		IconPolicy: icons.Policy{{Size: icons.DefaultSize, StoreCached: true}},
		Registry:   permissiveRegistry{},
	}

	res, ok, err := e.Process(context.Background(), pkg)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected ok=true for a fresh package")
	}
	if res.Ignored() {
		t.Fatalf("expected at least one surviving component")
	}

	comps := res.Components()
	c, found := comps["org.example.foobar"]
	if !found {
		t.Fatalf("components = %+v, want org.example.foobar", comps)
	}
	if c.Name != "Foobar" || c.Summary != "A foo for your bar" {
		t.Errorf("component = %+v", c)
	}
	if !c.HasIconOfSize(64, 64, 1) {
		t.Errorf("component missing mandatory 64x64 icon: %+v", c.Icons)
	}
	if raster.calls != 1 {
		t.Errorf("raster calls = %d, want 1", raster.calls)
	}
	if !pkg.Closed() {
		t.Error("expected package to be closed after Process")
	}
}

func TestProcessSkipsAlreadyProcessedPackage(t *testing.T) {
	pkid := asgen.NewPackageID("foobar", "1.0", "amd64")
	store := newCAS(t)
	if err := store.PutPackageSeen(context.Background(), pkid); err != nil {
		t.Fatal(err)
	}

	pkg := &dummy.Package{Pkid: pkid, PkgName: "foobar", PkgVersion: "1.0", PkgArch: "amd64"}
	e := &Extractor{CAS: store}

	res, ok, err := e.Process(context.Background(), pkg)
	if err != nil {
		t.Fatal(err)
	}
	if ok || res != nil {
		t.Fatalf("expected (nil, false, nil) for an already-processed package, got (%v, %v, %v)", res, ok, err)
	}
	if pkg.Closed() {
		t.Error("skipped package should not be extracted or closed")
	}
}

func TestProcessDropsComponentOnNoID(t *testing.T) {
	pkid := asgen.NewPackageID("broken", "1.0", "amd64")
	pkg := &dummy.Package{
		Pkid:       pkid,
		PkgName:    "broken",
		PkgVersion: "1.0",
		PkgArch:    "amd64",
		PkgFiles: map[string][]byte{
			"/usr/share/metainfo/broken.metainfo.xml": []byte(`<component><name>No ID</name></component>`),
		},
	}

	e := &Extractor{Registry: permissiveRegistry{}}
	res, ok, err := e.Process(context.Background(), pkg)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected ok=true even when every component is dropped")
	}
	if !res.Ignored() {
		t.Errorf("expected result to be ignored, components = %+v", res.Components())
	}

	raw, jerr := res.HintsJSON()
	if jerr != nil {
		t.Fatal(jerr)
	}
	var doc asgen.HintsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, h := range doc.Hints[asgen.GeneralCID] {
		if h.Tag == "metainfo-no-id" {
			found = true
		}
	}
	if !found {
		t.Errorf("hints = %+v, want metainfo-no-id", doc.Hints)
	}
}
