package asgen

import (
	"fmt"
	"strings"
)

// PackageID is the CAS primary key for package state: "name/version/arch"
// (spec §3 "Package (external)").
type PackageID string

// NewPackageID builds a PackageID from its three components.
func NewPackageID(name, version, arch string) PackageID {
	return PackageID(name + "/" + version + "/" + arch)
}

// Split decomposes a PackageID back into name, version, arch. It
// returns false if the id doesn't have exactly three "/"-separated
// parts.
func (p PackageID) Split() (name, version, arch string, ok bool) {
	parts := strings.SplitN(string(p), "/", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func (p PackageID) String() string { return string(p) }

// PackageStatus is the stored state of a package in the CAS "packages"
// database (spec §3 "CAS schemas").
type PackageStatus int

const (
	// StatusUnknown means the pkid has no record at all.
	StatusUnknown PackageStatus = iota
	// StatusIgnored means the package produced zero usable components.
	StatusIgnored
	// StatusSeen means the package was processed but intentionally
	// carries no gcids (reserved for scanners that only want to mark
	// a package visited without claiming components from it).
	StatusSeen
	// StatusGenerated means the package produced one or more gcids.
	StatusGenerated
)

func (s PackageStatus) String() string {
	switch s {
	case StatusIgnored:
		return "ignore"
	case StatusSeen:
		return "seen"
	case StatusGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// PackageRecord is the decoded form of a "packages" database row.
type PackageRecord struct {
	Status PackageStatus
	GCIDs  []string
}

// MetadataKind selects which of the two independently-keyed metadata
// databases an operation targets (spec §9's "Open question": both XML
// and YAML are stored independently keyed by (kind, gcid)).
type MetadataKind string

const (
	MetadataXML  MetadataKind = "xml"
	MetadataYAML MetadataKind = "yaml"
)

// Validate reports an error if k isn't one of the recognized kinds.
func (k MetadataKind) Validate() error {
	switch k {
	case MetadataXML, MetadataYAML:
		return nil
	default:
		return fmt.Errorf("asgen: unknown metadata kind %q", k)
	}
}
