// Package pipeline implements the top-level driver (spec §4.7,
// component C8): iterating (suite, section, arch) partitions,
// partitioning packages across a bounded worker pool, coordinating
// extraction, result merging, stats, cruft GC, and catalog emission.
//
// The per-partition control flow is an FSM modeled directly on
// indexer/controller.Controller: a State enum, a stateToStateFunc
// dispatch table, and a run loop that walks CheckRepoInfo ->
// Partition -> ExtractPackages -> MergeResults -> WriteStats ->
// Terminal, one file per state the way checkmanifest.go/scanlayers.go/
// coalesce.go are split in the teacher.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quay/zlog"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend"
	"github.com/ximion/appstream-generator-sub002/cas"
	"github.com/ximion/appstream-generator-sub002/config"
	"github.com/ximion/appstream-generator-sub002/contents"
	"github.com/ximion/appstream-generator-sub002/handlers"
	"github.com/ximion/appstream-generator-sub002/hintregistry"
	"github.com/ximion/appstream-generator-sub002/icons"
	"github.com/ximion/appstream-generator-sub002/result"
)

// Stage runs the FSM for exactly one (suite, section, arch) partition.
// The Pipeline constructs one Stage per partition and discards it once
// run() reaches Terminal.
type Stage struct {
	Suite, Section, Arch string

	cfg       *config.Config
	cas       *cas.Store
	contentsX *contents.Index
	pkgIndex  backend.PackageIndex
	contentsI backend.ContentsIndex
	registry  *hintregistry.Registry
	policy    icons.Policy
	themes    []*icons.ThemeIndex
	raster    icons.Rasterizer
	fonts     handlers.FontRenderer
	prober    handlers.VideoProber
	workers   int

	currentState State

	// populated across states
	pkgs       map[asgen.PackageID]backend.Package
	newPkids   []asgen.PackageID
	skipped    int
	results    map[asgen.PackageID]*result.Aggregator
	errored    map[asgen.PackageID]string
	skipRemain bool // CheckRepoInfo found nothing changed; short-circuit to Terminal

	totals map[string]int
}

// newRunID tags one Stage run for log correlation (spec §6 "DOMAIN
// STACK": "github.com/google/uuid | opaque run/worker ids").
func newRunID() string { return uuid.NewString() }

// run executes each stateFunc until Terminal is reached, mirroring
// indexer/controller.Controller.run(): no error short-circuits the
// whole pipeline, a failure inside one stateFunc is fatal only to this
// partition (spec §7 "Fatal, per-stage").
func (s *Stage) run(ctx context.Context) error {
	ctx = zlog.ContextWithValues(ctx, "component", "pipeline", "suite", s.Suite, "section", s.Section, "arch", s.Arch, "run", newRunID())
	s.currentState = CheckRepoInfo
	for s.currentState != Terminal {
		stepCtx := zlog.ContextWithValues(ctx, "state", s.currentState.String())
		fn, ok := stateToStateFunc[s.currentState]
		if !ok {
			return fmt.Errorf("pipeline: no handler for state %s", s.currentState)
		}
		next, err := fn(stepCtx, s)
		if err != nil {
			zlog.Error(stepCtx).Err(err).Msg("stage failed")
			return err
		}
		if s.skipRemain {
			return nil
		}
		s.currentState = next
	}
	return nil
}

// closeAllPackages releases every backend.Package this stage opened,
// regardless of whether Process ever ran against it (spec §4.7
// "Thread-safety discipline" + §9 "Lazy file extraction": Close must
// always fire; it is defined as idempotent so calling it twice, once
// inside Extractor.Process and once here, is safe).
func (s *Stage) closeAllPackages(ctx context.Context) {
	for pkid, p := range s.pkgs {
		if err := p.Close(); err != nil {
			zlog.Warn(ctx).Str("pkid", string(pkid)).Err(err).Msg("closing package failed")
		}
	}
}
