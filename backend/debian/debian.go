// Package debian implements the Debian/Ubuntu backend.PackageIndex
// (spec §1 "Distribution-specific package backends"), parsing a
// repository's "Packages" index file the same way the teacher's
// dpkg.Scanner reads a dpkg status database: the file is an
// RFC822-like message stream separated by blank lines, so
// net/textproto's MIME-header reader parses each stanza even though
// it's not actually a MIME document.
package debian

import (
	"archive/tar"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend"
)

// Stanza is one parsed "Packages" entry's fields this generator needs.
type Stanza struct {
	Name       string
	Version    string
	Arch       string
	Maintainer string
	Filename   string
}

// ParsePackagesIndex reads an uncompressed "Packages" file into its
// stanzas, in file order (spec §4.6 step 1 source data).
func ParsePackagesIndex(r io.Reader) ([]Stanza, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	var out []Stanza
	for {
		hdr, err := tp.ReadMIMEHeader()
		if len(hdr) > 0 {
			out = append(out, Stanza{
				Name:       hdr.Get("Package"),
				Version:    hdr.Get("Version"),
				Arch:       hdr.Get("Architecture"),
				Maintainer: hdr.Get("Maintainer"),
				Filename:   hdr.Get("Filename"),
			})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, asgen.NewError("debian.ParsePackagesIndex", asgen.ErrInvalid, "malformed Packages stanza", err)
		}
	}
	return out, nil
}

// DecompressPackagesIndex transparently handles the three compressions
// a "Packages" file is commonly shipped under.
func DecompressPackagesIndex(r io.Reader, filename string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(filename, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, asgen.NewError("debian.DecompressPackagesIndex", asgen.ErrInvalid, "opening gzip Packages index failed", err)
		}
		return gz, nil
	case strings.HasSuffix(filename, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, asgen.NewError("debian.DecompressPackagesIndex", asgen.ErrInvalid, "opening xz Packages index failed", err)
		}
		return xr, nil
	default:
		return r, nil
	}
}

// Index is a backend.PackageIndex + backend.ContentsIndex over a set
// of already-parsed Packages stanzas, grouped by (suite, section,
// arch) by the caller before construction.
type Index struct {
	partitions map[string][]Stanza
	openDeb    func(ctx context.Context, filename string) (io.ReadCloser, error)
}

var (
	_ backend.PackageIndex  = (*Index)(nil)
	_ backend.ContentsIndex = (*Index)(nil)
)

// NewIndex builds an Index. openDeb opens a .deb file's data by its
// repository-relative Filename field (spec's external mirror/pool
// layout is out of this module's scope; callers inject how a .deb's
// bytes are actually fetched).
func NewIndex(openDeb func(ctx context.Context, filename string) (io.ReadCloser, error)) *Index {
	return &Index{partitions: make(map[string][]Stanza), openDeb: openDeb}
}

// AddPartition registers the already-parsed stanzas belonging to one
// (suite, section, arch).
func (idx *Index) AddPartition(suite, section, arch string, stanzas []Stanza) {
	idx.partitions[partitionKey(suite, section, arch)] = stanzas
}

func (idx *Index) PackagesFor(ctx context.Context, suite, section, arch string) ([]backend.Package, error) {
	stanzas := idx.partitions[partitionKey(suite, section, arch)]
	out := make([]backend.Package, 0, len(stanzas))
	for _, s := range stanzas {
		out = append(out, &Package{stanza: s, openDeb: idx.openDeb})
	}
	return out, nil
}

func (idx *Index) ContentsFor(ctx context.Context, pkid asgen.PackageID) ([]string, error) {
	name, version, arch, ok := pkid.Split()
	if !ok {
		return nil, asgen.NewError("debian.Index.ContentsFor", asgen.ErrInvalid, "malformed pkid", nil)
	}
	for _, stanzas := range idx.partitions {
		for _, s := range stanzas {
			if s.Name == name && s.Version == version && s.Arch == arch {
				pkg := &Package{stanza: s, openDeb: idx.openDeb}
				defer pkg.Close()
				return pkg.Contents(ctx)
			}
		}
	}
	return nil, asgen.NewError("debian.Index.ContentsFor", asgen.ErrNotFound, "no such package: "+string(pkid), nil)
}

func partitionKey(suite, section, arch string) string { return suite + "/" + section + "/" + arch }

// Package adapts one Debian Stanza to backend.Package, lazily
// extracting the .deb's data.tar member on first Contents()/FileData()
// call (spec §4.7 "Lazy file extraction").
type Package struct {
	stanza  Stanza
	openDeb func(ctx context.Context, filename string) (io.ReadCloser, error)

	files map[string][]byte // populated lazily
}

var _ backend.Package = (*Package)(nil)

func (p *Package) ID() asgen.PackageID {
	return asgen.NewPackageID(p.stanza.Name, p.stanza.Version, p.stanza.Arch)
}
func (p *Package) Name() string       { return p.stanza.Name }
func (p *Package) Version() string    { return p.stanza.Version }
func (p *Package) Arch() string       { return p.stanza.Arch }
func (p *Package) Maintainer() string { return p.stanza.Maintainer }
func (p *Package) Filename() string   { return p.stanza.Filename }

func (p *Package) ensureExtracted(ctx context.Context) error {
	if p.files != nil {
		return nil
	}
	rc, err := p.openDeb(ctx, p.stanza.Filename)
	if err != nil {
		return asgen.NewError("debian.Package.ensureExtracted", asgen.ErrTransient, "opening .deb failed", err)
	}
	defer rc.Close()

	files, err := extractDataTar(rc)
	if err != nil {
		return err
	}
	p.files = files
	return nil
}

// extractDataTar reads an ar(1)-formatted .deb archive and unpacks its
// "data.tar*" member into an in-memory path->bytes map.
func extractDataTar(r io.Reader) (map[string][]byte, error) {
	member, err := findArMember(r, "data.tar")
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(member)
	out := make(map[string][]byte)
	for {
		h, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, asgen.NewError("debian.extractDataTar", asgen.ErrInvalid, "reading data.tar failed", err)
		}
		if h.Typeflag != tar.TypeReg {
			continue
		}
		data := make([]byte, h.Size)
		if _, err := io.ReadFull(tr, data); err != nil {
			return nil, asgen.NewError("debian.extractDataTar", asgen.ErrInvalid, "reading tar entry failed", err)
		}
		out[normalizeArPath(h.Name)] = data
	}
	return out, nil
}

func normalizeArPath(name string) string {
	name = strings.TrimPrefix(name, ".")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

// findArMember scans a Unix ar(1) archive for the first member whose
// name has the given prefix, transparently decompressing
// gz/xz/uncompressed variants, and returns a reader positioned at its
// (decompressed) content.
func findArMember(r io.Reader, namePrefix string) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, 8)
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != "!<arch>\n" {
		return nil, asgen.NewError("debian.findArMember", asgen.ErrInvalid, "not a Unix ar archive", err)
	}
	for {
		hdr := make([]byte, 60)
		if _, err := io.ReadFull(br, hdr); err != nil {
			return nil, asgen.NewError("debian.findArMember", asgen.ErrNotFound, "ar member not found: "+namePrefix, err)
		}
		name := strings.TrimSpace(string(hdr[0:16]))
		sizeField := strings.TrimSpace(string(hdr[48:58]))
		var size int64
		if _, err := fmt.Sscanf(sizeField, "%d", &size); err != nil {
			return nil, asgen.NewError("debian.findArMember", asgen.ErrInvalid, "malformed ar header size", err)
		}
		if strings.HasPrefix(name, namePrefix) {
			content := io.LimitReader(br, size)
			return DecompressPackagesIndex(content, name)
		}
		skip := size
		if size%2 != 0 {
			skip++ // ar members are 2-byte aligned
		}
		if _, err := io.CopyN(io.Discard, br, skip); err != nil {
			return nil, asgen.NewError("debian.findArMember", asgen.ErrInvalid, "skipping ar member failed", err)
		}
	}
}

func (p *Package) Contents(ctx context.Context) ([]string, error) {
	if err := p.ensureExtracted(ctx); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		paths = append(paths, path)
	}
	return paths, nil
}

func (p *Package) FileData(ctx context.Context, path string) ([]byte, error) {
	if err := p.ensureExtracted(ctx); err != nil {
		return nil, err
	}
	data, ok := p.files[path]
	if !ok {
		return nil, asgen.NewError("debian.Package.FileData", asgen.ErrNotFound, "no such file: "+path, nil)
	}
	return data, nil
}

// Close releases the in-memory extraction. Debian packages extract
// into memory rather than a temp directory, so this only drops the
// reference (spec §4.7 "Temp directories" is satisfied trivially here).
func (p *Package) Close() error {
	p.files = nil
	return nil
}
