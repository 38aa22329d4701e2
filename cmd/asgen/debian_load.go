package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend/debian"
	"github.com/ximion/appstream-generator-sub002/config"
)

// archiveFetcher opens a file addressed relative to cfg.ArchiveRoot,
// which spec §6 allows to be "a local path or URL". Network
// downloading of a remote repository is explicitly out of this
// module's scope (spec §1), so this is the CLI's own thin adapter: an
// http(s) root uses http.Get, anything else is treated as a local
// filesystem path.
func archiveFetcher(root string) func(ctx context.Context, rel string) (io.ReadCloser, error) {
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		return func(ctx context.Context, rel string) (io.ReadCloser, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+"/"+rel, nil)
			if err != nil {
				return nil, asgen.NewError("main.archiveFetcher", asgen.ErrInternal, "building archive request failed", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return nil, asgen.NewError("main.archiveFetcher", asgen.ErrTransient, "fetching archive file failed", err)
			}
			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return nil, asgen.NewError("main.archiveFetcher", asgen.ErrNotFound, "archive file "+rel+" returned "+resp.Status, nil)
			}
			return resp.Body, nil
		}
	}
	return func(ctx context.Context, rel string) (io.ReadCloser, error) {
		f, err := os.Open(path.Join(root, rel))
		if err != nil {
			return nil, asgen.NewError("main.archiveFetcher", asgen.ErrTransient, "opening archive file failed", err)
		}
		return f, nil
	}
}

// debianPackagesIndexCandidates is the set of compressed/uncompressed
// names a Debian "Packages" file for one (section, arch) is commonly
// published under, most-compressed first.
var debianPackagesIndexCandidates = []string{"Packages.xz", "Packages.gz", "Packages"}

// loadDebianIndex builds a debian.Index covering every (section, arch)
// pair of the given suite by fetching and parsing each partition's
// "Packages" file from the standard
// dists/<suite>/<section>/binary-<arch>/ layout.
func loadDebianIndex(ctx context.Context, cfg *config.Config, suite string) (*debian.Index, error) {
	fetch := archiveFetcher(cfg.ArchiveRoot)
	idx := debian.NewIndex(fetch)

	sc, ok := cfg.Suites[suite]
	if !ok {
		return nil, asgen.NewError("main.loadDebianIndex", asgen.ErrInvalid, "unknown suite "+suite, nil)
	}
	for _, section := range sc.Sections {
		for _, arch := range sc.Architectures {
			stanzas, err := fetchPackagesStanzas(ctx, fetch, suite, section, arch)
			if err != nil {
				return nil, err
			}
			idx.AddPartition(suite, section, arch, stanzas)
		}
	}
	return idx, nil
}

func fetchPackagesStanzas(ctx context.Context, fetch func(context.Context, string) (io.ReadCloser, error), suite, section, arch string) ([]debian.Stanza, error) {
	dir := "dists/" + suite + "/" + section + "/binary-" + arch
	var lastErr error
	for _, name := range debianPackagesIndexCandidates {
		rel := dir + "/" + name
		rc, err := fetch(ctx, rel)
		if err != nil {
			lastErr = err
			continue
		}
		r, err := debian.DecompressPackagesIndex(rc, name)
		if err != nil {
			rc.Close()
			return nil, err
		}
		stanzas, err := debian.ParsePackagesIndex(r)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return stanzas, nil
	}
	// Fatal, per-stage (spec §7): "missing Packages index file for
	// (suite, section, arch)" aborts this partition but not the whole
	// process.
	return nil, asgen.NewError("main.fetchPackagesStanzas", asgen.ErrNotFound,
		"no Packages index found under "+dir, lastErr)
}
