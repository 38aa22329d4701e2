package dummy

import (
	"context"
	"testing"

	"github.com/ximion/appstream-generator-sub002"
)

func TestIndexPackagesForAndContents(t *testing.T) {
	idx := NewIndex()
	pkg := &Package{
		Pkid:       asgen.NewPackageID("foo", "1.0", "amd64"),
		PkgName:    "foo",
		PkgVersion: "1.0",
		PkgArch:    "amd64",
		PkgFiles:   map[string][]byte{"/usr/bin/foo": []byte("bin")},
	}
	idx.Add("stable", "main", "amd64", pkg)

	pkgs, err := idx.PackagesFor(context.Background(), "stable", "main", "amd64")
	if err != nil {
		t.Fatal(err)
	}
	if len(pkgs) != 1 || pkgs[0].Name() != "foo" {
		t.Fatalf("pkgs = %+v", pkgs)
	}

	contents, err := idx.ContentsFor(context.Background(), pkg.Pkid)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 || contents[0] != "/usr/bin/foo" {
		t.Fatalf("contents = %v", contents)
	}

	data, err := pkgs[0].FileData(context.Background(), "/usr/bin/foo")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "bin" {
		t.Errorf("data = %q", data)
	}

	if err := pkgs[0].Close(); err != nil {
		t.Fatal(err)
	}
	if !pkg.Closed() {
		t.Error("expected package to be marked closed")
	}
}

func TestContentsForUnknownPackage(t *testing.T) {
	idx := NewIndex()
	_, err := idx.ContentsFor(context.Background(), asgen.NewPackageID("missing", "1.0", "amd64"))
	if err == nil {
		t.Fatal("expected error for unknown package")
	}
}
