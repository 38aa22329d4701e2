package cas

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ximion/appstream-generator-sub002"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "cache"), filepath.Join(dir, "media"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPackageLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	pkid := asgen.NewPackageID("foo", "1.0", "amd64")

	if ok, err := s.PackageExists(ctx, pkid); err != nil || ok {
		t.Fatalf("PackageExists = %v, %v; want false, nil", ok, err)
	}

	if err := s.PutPackageGCIDs(ctx, pkid, []string{"f/fo/foo/AAAA", "f/fo/foo/BBBB"}); err != nil {
		t.Fatal(err)
	}
	rec, err := s.GetPackage(ctx, pkid)
	if err != nil {
		t.Fatal(err)
	}
	want := asgen.PackageRecord{Status: asgen.StatusGenerated, GCIDs: []string{"f/fo/foo/AAAA", "f/fo/foo/BBBB"}}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("GetPackage mismatch (-want +got):\n%s", diff)
	}

	if err := s.PutPackageIgnore(ctx, pkid); err != nil {
		t.Fatal(err)
	}
	rec, err = s.GetPackage(ctx, pkid)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != asgen.StatusIgnored || len(rec.GCIDs) != 0 {
		t.Fatalf("GetPackage after ignore = %+v", rec)
	}
}

func TestMetadataWriteOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	gcid := "org/example/foo/DEAD"
	if err := s.PutMetadata(ctx, asgen.MetadataXML, gcid, []byte("<component/>")); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetMetadata(ctx, asgen.MetadataXML, gcid)
	if err != nil || string(got) != "<component/>" {
		t.Fatalf("GetMetadata = %q, %v", got, err)
	}
	if has, _ := s.HasMetadata(ctx, asgen.MetadataXML, gcid); !has {
		t.Fatal("HasMetadata = false")
	}
	if has, _ := s.HasMetadata(ctx, asgen.MetadataYAML, gcid); has {
		t.Fatal("HasMetadata(yaml) = true, kinds should be independent")
	}
}

func TestGCCruftRemovesUnreferencedGCID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g1 := "f/fo/foo/AAAA"
	g2 := "f/fo/foo/BBBB"
	a := asgen.NewPackageID("a", "1", "amd64")
	b := asgen.NewPackageID("b", "1", "amd64")

	for _, g := range []string{g1, g2} {
		if err := s.PutMetadata(ctx, asgen.MetadataXML, g, []byte("x")); err != nil {
			t.Fatal(err)
		}
		if _, err := s.EnsureMediaDir(g, "icons/64x64"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.PutPackageGCIDs(ctx, a, []string{g1}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutPackageGCIDs(ctx, b, []string{g1, g2}); err != nil {
		t.Fatal(err)
	}

	if err := s.RemovePackage(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := s.GCCruft(ctx); err != nil {
		t.Fatal(err)
	}

	if has, _ := s.HasMetadata(ctx, asgen.MetadataXML, g1); !has {
		t.Fatal("g1 should survive: still referenced by pkid a")
	}
	if has, _ := s.HasMetadata(ctx, asgen.MetadataXML, g2); has {
		t.Fatal("g2 should be collected: no surviving pkid references it")
	}
	if s.MediaExists(g2, "icons/64x64") {
		t.Fatal("g2 media directory should have been removed")
	}
	if !s.MediaExists(g1, "icons/64x64") {
		t.Fatal("g1 media directory should survive")
	}
}

func TestGCCruftIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	g1 := "f/fo/foo/AAAA"
	if err := s.PutMetadata(ctx, asgen.MetadataXML, g1, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.GCCruft(ctx); err != nil {
		t.Fatal(err)
	}
	if has, _ := s.HasMetadata(ctx, asgen.MetadataXML, g1); has {
		t.Fatal("unreferenced gcid should be removed on first pass")
	}
	// Second call with no intervening writes must be a no-op.
	if err := s.GCCruft(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestStatsMonotonicSequence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rec := StatRecord{UnixSecond: 1000, Suite: "stable", Section: "main", Totals: map[string]int{"components": 3}}
	if err := s.AddStats(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.AddStats(ctx, rec); err != nil { // same second, must not collide
		t.Fatal(err)
	}
	got, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got[1000]) != 2 {
		t.Fatalf("got[1000] has %d records, want 2", len(got[1000]))
	}
}

func TestRepoInfoRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.SetRepoInfo(ctx, "stable", "main", "amd64", RepoInfo{MTime: 42}); err != nil {
		t.Fatal(err)
	}
	info, ok, err := s.GetRepoInfo(ctx, "stable", "main", "amd64")
	if err != nil || !ok || info.MTime != 42 {
		t.Fatalf("GetRepoInfo = %+v, %v, %v", info, ok, err)
	}
	if err := s.RemoveRepoInfo(ctx, "stable", "main", "amd64"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetRepoInfo(ctx, "stable", "main", "amd64"); ok {
		t.Fatal("expected repo info removed")
	}
}
