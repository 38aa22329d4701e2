// Package dummy is an in-memory backend implementation used by tests
// and by the module's own test suite, standing in for
// a real backend.PackageIndex/ContentsIndex/Package (spec §6
// "Backend ∈ {..., dummy}"). It hand-writes its fakes instead of using
// a generated mock, matching the rest of this module's test style
// (google/go-cmp + real fakes rather than go.uber.org/mock).
package dummy

import (
	"context"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend"
)

// Package is an in-memory backend.Package.
type Package struct {
	Pkid       asgen.PackageID
	PkgName    string
	PkgVersion string
	PkgArch    string
	PkgFiles   map[string][]byte // path -> content
	closed     bool
}

var _ backend.Package = (*Package)(nil)

func (p *Package) ID() asgen.PackageID { return p.Pkid }
func (p *Package) Name() string        { return p.PkgName }
func (p *Package) Version() string     { return p.PkgVersion }
func (p *Package) Arch() string        { return p.PkgArch }
func (p *Package) Maintainer() string  { return "" }
func (p *Package) Filename() string    { return p.PkgName + "_" + p.PkgVersion + "_" + p.PkgArch + ".pkg" }

func (p *Package) Contents(ctx context.Context) ([]string, error) {
	paths := make([]string, 0, len(p.PkgFiles))
	for path := range p.PkgFiles {
		paths = append(paths, path)
	}
	return paths, nil
}

func (p *Package) FileData(ctx context.Context, path string) ([]byte, error) {
	data, ok := p.PkgFiles[path]
	if !ok {
		return nil, asgen.NewError("dummy.Package.FileData", asgen.ErrNotFound, "no such file: "+path, nil)
	}
	return data, nil
}

func (p *Package) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called, for test assertions.
func (p *Package) Closed() bool { return p.closed }

// Index is an in-memory backend.PackageIndex + backend.ContentsIndex,
// keyed by (suite, section, arch).
type Index struct {
	Packages map[string][]*Package // "suite/section/arch" -> packages
}

var (
	_ backend.PackageIndex   = (*Index)(nil)
	_ backend.ContentsIndex  = (*Index)(nil)
)

// NewIndex constructs an empty in-memory Index.
func NewIndex() *Index { return &Index{Packages: make(map[string][]*Package)} }

// Add registers pkg under (suite, section, arch).
func (i *Index) Add(suite, section, arch string, pkg *Package) {
	key := partitionKey(suite, section, arch)
	i.Packages[key] = append(i.Packages[key], pkg)
}

func (i *Index) PackagesFor(ctx context.Context, suite, section, arch string) ([]backend.Package, error) {
	pkgs := i.Packages[partitionKey(suite, section, arch)]
	out := make([]backend.Package, len(pkgs))
	for idx, p := range pkgs {
		out[idx] = p
	}
	return out, nil
}

func (i *Index) ContentsFor(ctx context.Context, pkid asgen.PackageID) ([]string, error) {
	for _, pkgs := range i.Packages {
		for _, p := range pkgs {
			if p.Pkid == pkid {
				return p.Contents(ctx)
			}
		}
	}
	return nil, asgen.NewError("dummy.Index.ContentsFor", asgen.ErrNotFound, "no such package: "+string(pkid), nil)
}

func partitionKey(suite, section, arch string) string { return suite + "/" + section + "/" + arch }
