// Package backend defines the external package-source interfaces this
// generator is built against (spec §4.1's "Package (external)" and
// §1's "Distribution-specific package backends"). Concrete backends
// (Debian/Ubuntu, RPM-MD, Arch, Flatpak, FreeBSD, dummy) implement
// PackageIndex, ContentsIndex, and Package; this package only defines
// the contract.
//
// The teacher vendors go.uber.org/mock for generated interface mocks;
// this module hand-writes small fakes under backend/dummy instead; see
// DESIGN.md for why.
package backend

import (
	"context"

	"github.com/ximion/appstream-generator-sub002"
)

// Package is one binary package's external view: immutable identity
// attributes plus lazy file access (spec §4.1 "Package (external)").
// Symbolic-link resolution is the backend's responsibility.
type Package interface {
	ID() asgen.PackageID
	Name() string
	Version() string
	Arch() string
	Maintainer() string
	Filename() string

	// Contents lists every file path this package installs. It may
	// trigger a lazy extraction on first call.
	Contents(ctx context.Context) ([]string, error)

	// FileData reads one file's bytes out of the package, by the path
	// Contents() returned it under.
	FileData(ctx context.Context, path string) ([]byte, error)

	// Close releases any temporary extraction directory this package
	// allocated. Safe to call multiple times (spec §4.7 "Temp
	// directories": "must be recursively removed on completion or
	// error").
	Close() error
}

// PackageIndex enumerates the packages belonging to one
// (suite, section, arch) partition (spec §4.6 step 1).
type PackageIndex interface {
	PackagesFor(ctx context.Context, suite, section, arch string) ([]Package, error)
}

// ContentsIndex is the backend-specific source of a package's file
// listing, feeding the internal contents.Index cache (C2). Most
// backends implement this by delegating to Package.Contents; it is a
// separate interface because some backends (e.g. RPM-MD) can answer it
// from repository metadata without extracting the package at all.
type ContentsIndex interface {
	ContentsFor(ctx context.Context, pkid asgen.PackageID) ([]string, error)
}
