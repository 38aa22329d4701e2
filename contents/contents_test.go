package contents

import (
	"context"
	"testing"

	"github.com/ximion/appstream-generator-sub002"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestAddContentsDeduplicates(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	if err := idx.AddContents(ctx, pkid, []string{"/a", "/b", "/a"}); err != nil {
		t.Fatal(err)
	}
	got, err := idx.ContentsOf(ctx, pkid)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ContentsOf = %v, want 2 deduplicated entries", got)
	}
}

func TestIconsMapFiltersToKnownPrefixes(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	paths := []string{
		"/usr/share/icons/hicolor/64x64/apps/foo.png",
		"/usr/share/pixmaps/foo.xpm",
		"/usr/share/pixmaps/sub/foo.xpm", // non-recursive, excluded
		"/usr/bin/foo",
	}
	if err := idx.AddContents(ctx, pkid, paths); err != nil {
		t.Fatal(err)
	}
	m, err := idx.IconsMap(ctx, []asgen.PackageID{pkid})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 {
		t.Fatalf("IconsMap = %v, want 2 entries", m)
	}
	if _, ok := m["/usr/share/icons/hicolor/64x64/apps/foo.png"]; !ok {
		t.Error("missing themed icon path")
	}
	if _, ok := m["/usr/share/pixmaps/foo.xpm"]; !ok {
		t.Error("missing pixmap path")
	}
	if _, ok := m["/usr/share/pixmaps/sub/foo.xpm"]; ok {
		t.Error("pixmaps should not be recursive")
	}
}

func TestLocaleMapUsesBasename(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")
	paths := []string{"/usr/share/locale/de/LC_MESSAGES/foo.mo"}
	if err := idx.AddContents(ctx, pkid, paths); err != nil {
		t.Fatal(err)
	}
	m, err := idx.LocaleMap(ctx, []asgen.PackageID{pkid})
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := m["foo.mo"]; !ok || got != pkid {
		t.Fatalf("LocaleMap = %v, want foo.mo -> %v", m, pkid)
	}
}
