package icons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ximion/appstream-generator-sub002"
)

type fakeRasterizer struct {
	calls int
}

func (f *fakeRasterizer) Rasterize(data []byte, kind SourceKind, width, height int) ([]byte, error) {
	f.calls++
	return []byte("fake-png-bytes"), nil
}

type dirMediaWriter struct{ root string }

func (d *dirMediaWriter) EnsureMediaDir(gcid, sub string) (string, error) {
	p := filepath.Join(d.root, gcid, sub)
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", err
	}
	return p, nil
}

func fetchStatic(data map[string][]byte) FileFetcher {
	return func(pkid asgen.PackageID, path string) ([]byte, error) {
		return data[path], nil
	}
}

func TestResolveFindsHicolorIconAndWritesFile(t *testing.T) {
	hicolor, err := LoadHicolorTheme()
	if err != nil {
		t.Fatal(err)
	}
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	iconsMap := map[string]asgen.PackageID{
		"/usr/share/icons/hicolor/64x64/apps/foobar.png": pkid,
	}
	raster := &fakeRasterizer{}
	writer := &dirMediaWriter{root: t.TempDir()}
	r := &Resolver{
		Themes:   []*ThemeIndex{hicolor},
		IconsMap: iconsMap,
		Fetch:    fetchStatic(map[string][]byte{"/usr/share/icons/hicolor/64x64/apps/foobar.png": []byte("src")}),
		Raster:   raster,
		Writer:   writer,
	}
	c := &asgen.Component{ID: "org.example.foobar"}
	policy := Policy{{Size: DefaultSize, StoreCached: true}}

	hints := r.Resolve("f/fo/foobar/ABCD", c, "foobar", "foo", pkid, nil, policy, "https://example.org/media")

	if !c.HasIconOfSize(64, 64, 1) {
		t.Fatalf("component missing mandatory 64x64 icon, icons=%+v hints=%v", c.Icons, hints)
	}
	if raster.calls != 1 {
		t.Errorf("raster calls = %d, want 1", raster.calls)
	}

	destDir, _ := writer.EnsureMediaDir("f/fo/foobar/ABCD", "icons/"+DefaultSize.String())
	entries, _ := os.ReadDir(destDir)
	if len(entries) != 1 {
		t.Fatalf("expected one rendered icon file on disk, got %v", entries)
	}
}

func TestResolveSkipsRasterWhenDestinationExists(t *testing.T) {
	hicolor, _ := LoadHicolorTheme()
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	iconsMap := map[string]asgen.PackageID{
		"/usr/share/icons/hicolor/64x64/apps/foobar.png": pkid,
	}
	raster := &fakeRasterizer{}
	writer := &dirMediaWriter{root: t.TempDir()}
	r := &Resolver{
		Themes:   []*ThemeIndex{hicolor},
		IconsMap: iconsMap,
		Fetch:    fetchStatic(map[string][]byte{"/usr/share/icons/hicolor/64x64/apps/foobar.png": []byte("src")}),
		Raster:   raster,
		Writer:   writer,
	}
	policy := Policy{{Size: DefaultSize, StoreCached: true}}

	c1 := &asgen.Component{ID: "org.example.foobar"}
	r.Resolve("f/fo/foobar/ABCD", c1, "foobar", "foo", pkid, nil, policy, "")
	if raster.calls != 1 {
		t.Fatalf("first resolve: raster calls = %d, want 1", raster.calls)
	}

	c2 := &asgen.Component{ID: "org.example.foobar"}
	r.Resolve("f/fo/foobar/ABCD", c2, "foobar", "foo", pkid, nil, policy, "")
	if raster.calls != 1 {
		t.Errorf("second resolve: raster calls = %d, want still 1 (idempotent)", raster.calls)
	}
	if !c2.HasIconOfSize(64, 64, 1) {
		t.Error("second resolve should still attach the icon entry")
	}
}

func TestFindInThemesPicksSmallestLargerDirectory(t *testing.T) {
	pkid128 := asgen.NewPackageID("foo", "1.0", "amd64")
	theme := &ThemeIndex{
		Name: "test",
		Dirs: []ThemeDir{
			{Path: "256x256/apps", Type: DirThreshold, Size: 256, Scale: 1, Threshold: 2},
			{Path: "128x128/apps", Type: DirThreshold, Size: 128, Scale: 1, Threshold: 2},
		},
	}
	r := &Resolver{
		Themes: []*ThemeIndex{theme},
		IconsMap: map[string]asgen.PackageID{
			"/usr/share/icons/test/256x256/apps/foobar.png": pkid128,
			"/usr/share/icons/test/128x128/apps/foobar.png": pkid128,
		},
	}

	cand, ok := r.findInThemes("foobar", Size{Width: 64, Height: 64, Scale: 1})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if cand.size != 128 {
		t.Errorf("size = %d, want 128 (smallest larger directory, not 256)", cand.size)
	}
}

func TestFindInThemesUpscaleTierPicksLargestSmallerDirectory(t *testing.T) {
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	theme := &ThemeIndex{
		Name: "test",
		Dirs: []ThemeDir{
			{Path: "8x8/apps", Type: DirThreshold, Size: 8, Scale: 1, Threshold: 20},
			{Path: "16x16/apps", Type: DirThreshold, Size: 16, Scale: 1, Threshold: 20},
		},
	}
	r := &Resolver{
		Themes: []*ThemeIndex{theme},
		IconsMap: map[string]asgen.PackageID{
			"/usr/share/icons/test/8x8/apps/foobar.png":   pkid,
			"/usr/share/icons/test/16x16/apps/foobar.png": pkid,
		},
	}

	cand, ok := r.findInThemes("foobar", Size{Width: 20, Height: 20, Scale: 1})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if cand.size != 16 {
		t.Errorf("size = %d, want 16 (largest directory smaller than the request)", cand.size)
	}
}

func TestResolveMandatory64x64RasterizesRatherThanRelabels(t *testing.T) {
	hicolor, _ := LoadHicolorTheme()
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	iconsMap := map[string]asgen.PackageID{
		"/usr/share/icons/hicolor/128x128/apps/foobar.png": pkid,
	}
	raster := &fakeRasterizer{}
	writer := &dirMediaWriter{root: t.TempDir()}
	r := &Resolver{
		Themes:   []*ThemeIndex{hicolor},
		IconsMap: iconsMap,
		Fetch:    fetchStatic(map[string][]byte{"/usr/share/icons/hicolor/128x128/apps/foobar.png": []byte("src")}),
		Raster:   raster,
		Writer:   writer,
	}
	c := &asgen.Component{ID: "org.example.foobar"}
	policy := Policy{{Size: Size{Width: 128, Height: 128, Scale: 1}, StoreCached: true}}

	r.Resolve("f/fo/foobar/ABCD", c, "foobar", "foo", pkid, nil, policy, "")

	if !c.HasIconOfSize(64, 64, 1) {
		t.Fatalf("component missing mandatory 64x64 icon, icons=%+v", c.Icons)
	}
	if raster.calls != 2 {
		t.Fatalf("raster calls = %d, want 2 (128x128 plus the derived 64x64)", raster.calls)
	}

	destDir, _ := writer.EnsureMediaDir("f/fo/foobar/ABCD", "icons/"+DefaultSize.String())
	entries, err := os.ReadDir(destDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected a rendered 64x64 icon file on disk, got %v (err=%v)", entries, err)
	}
}

func TestResolveIconNotFoundHint(t *testing.T) {
	hicolor, _ := LoadHicolorTheme()
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	r := &Resolver{
		Themes:   []*ThemeIndex{hicolor},
		IconsMap: map[string]asgen.PackageID{},
		Fetch:    fetchStatic(nil),
		Raster:   &fakeRasterizer{},
		Writer:   &dirMediaWriter{root: t.TempDir()},
	}
	c := &asgen.Component{ID: "org.example.missing"}
	hints := r.Resolve("gcid", c, "missing-icon", "foo", pkid, nil, Policy{{Size: DefaultSize, StoreCached: true}}, "")

	found := false
	for _, h := range hints {
		if h == "icon-not-found" {
			found = true
		}
	}
	if !found {
		t.Errorf("hints = %v, want icon-not-found", hints)
	}
}
