package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend/dummy"
	"github.com/ximion/appstream-generator-sub002/config"
)

// dummyFixture is the on-disk shape the "dummy" backend reads its
// packages from: "<ArchiveRoot>/dummy-packages.json", a flat list of
// packages each tagged with the (suite, section, arch) partition it
// belongs to. The dummy backend exists purely to exercise the
// pipeline without a real distribution's archive format (spec §6
// "Backend ∈ {..., dummy}"), so this module defines its own minimal
// fixture format rather than reverse-engineering one from a real
// distro (see DESIGN.md).
type dummyFixture struct {
	Packages []dummyFixturePackage `json:"packages"`
}

type dummyFixturePackage struct {
	Suite   string            `json:"suite"`
	Section string            `json:"section"`
	Arch    string            `json:"arch"`
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Files   map[string]string `json:"files"` // path -> content, as UTF-8 text
}

func loadDummyIndex(ctx context.Context, cfg *config.Config) (*dummy.Index, error) {
	idx := dummy.NewIndex()

	data, err := os.ReadFile(cfg.ArchiveRoot + "/dummy-packages.json")
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, asgen.NewError("main.loadDummyIndex", asgen.ErrInternal, "reading dummy fixture failed", err)
	}

	var fx dummyFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, asgen.NewError("main.loadDummyIndex", asgen.ErrInvalid, "parsing dummy fixture failed", err)
	}

	for _, p := range fx.Packages {
		files := make(map[string][]byte, len(p.Files))
		for path, content := range p.Files {
			files[path] = []byte(content)
		}
		idx.Add(p.Suite, p.Section, p.Arch, &dummy.Package{
			Pkid:       asgen.NewPackageID(p.Name, p.Version, p.Arch),
			PkgName:    p.Name,
			PkgVersion: p.Version,
			PkgArch:    p.Arch,
			PkgFiles:   files,
		})
	}
	return idx, nil
}
