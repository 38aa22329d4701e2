package pipeline

import (
	"context"

	"github.com/quay/zlog"
)

// partitionStep builds the pkid list for this run and consults the CAS
// so pkids already ignored/seen/generated never re-enter extraction
// (spec §4.7 step 3: "Consult CAS: pkids already
// ignored|seen|generated skip extraction").
//
// It also feeds every package's file listing into the contents index,
// since §4.2's cross-package icon/locale union needs every pkid's
// contents recorded, including ones this run will skip extracting.
//
// File listings come from the backend's ContentsIndex rather than
// Package.Contents directly: some backends (e.g. RPM-MD) can answer
// ContentsFor straight from repository metadata without extracting the
// package at all (backend.ContentsIndex doc comment), so using it here
// keeps this listing pass cheap even for pkids this run will skip
// extracting; only ExtractPackages opens a package for real file bytes.
func partitionStep(ctx context.Context, s *Stage) (State, error) {
	s.newPkids = s.newPkids[:0]
	s.skipped = 0

	for pkid := range s.pkgs {
		paths, err := s.contentsI.ContentsFor(ctx, pkid)
		if err != nil {
			zlog.Warn(ctx).Str("pkid", string(pkid)).Err(err).Msg("listing package contents failed")
			continue
		}
		if err := s.contentsX.AddContents(ctx, pkid, paths); err != nil {
			return Terminal, err
		}

		exists, err := s.cas.PackageExists(ctx, pkid)
		if err != nil {
			return Terminal, err
		}
		if exists {
			s.skipped++
			continue
		}
		s.newPkids = append(s.newPkids, pkid)
	}

	zlog.Info(ctx).Int("total", len(s.pkgs)).Int("new", len(s.newPkids)).Int("skipped", s.skipped).Msg("partition built")

	if len(s.newPkids) == 0 {
		return WriteStats, nil
	}
	return ExtractPackages, nil
}
