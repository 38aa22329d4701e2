package pipeline

import (
	"context"

	"github.com/quay/zlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend"
	"github.com/ximion/appstream-generator-sub002/cas"
	"github.com/ximion/appstream-generator-sub002/config"
	"github.com/ximion/appstream-generator-sub002/contents"
	"github.com/ximion/appstream-generator-sub002/handlers"
	"github.com/ximion/appstream-generator-sub002/hintregistry"
	"github.com/ximion/appstream-generator-sub002/icons"
)

var tracer = otel.Tracer("github.com/ximion/appstream-generator-sub002/pipeline")

// Pipeline is the top-level driver (spec §4.7, component C8). One
// Pipeline is constructed per invocation of the "process"/"run" CLI
// subcommand and is discarded afterward; it holds no mutable global
// state of its own, only the already-validated *config.Config and the
// already-opened store handles the caller constructed (spec §9
// "Singleton config": the config itself is immutable and explicitly
// threaded through, never a package-global).
type Pipeline struct {
	Config   *config.Config
	CAS      *cas.Store
	Contents *contents.Index
	Backend  interface {
		backend.PackageIndex
		backend.ContentsIndex
	}
	Registry *hintregistry.Registry
	Themes   []*icons.ThemeIndex
	Raster   icons.Rasterizer
	Fonts    handlers.FontRenderer
	Prober   handlers.VideoProber
	Workers  int
}

// RunSuite runs every (section, arch) partition of one configured
// suite in turn (spec §4.7: "For each (suite, section, arch) in the
// config"), then scopes RemovePackagesNotIn to that suite once every
// partition has completed (spec §4.7 step 7: "After all sections of a
// suite complete, call remove_packages_not_in... scoped to that
// suite"), and finally writes the suite's catalog via EmitCatalog. It
// does not itself call GCCruft — the caller (the CLI's process/run
// subcommand) does that once across however many suites it processes
// in one invocation, since cruft GC runs "after all suites complete"
// globally, not per suite.
func (p *Pipeline) RunSuite(ctx context.Context, suite string) error {
	if !p.Registry.Loaded() {
		return asgen.NewError("pipeline.RunSuite", asgen.ErrPrecondition, "hint registry not loaded", nil)
	}

	sc, ok := p.Config.Suites[suite]
	if !ok {
		return asgen.NewError("pipeline.RunSuite", asgen.ErrInvalid, "unknown suite "+suite, nil)
	}

	ctx, span := tracer.Start(ctx, "Pipeline.RunSuite")
	span.SetAttributes(attribute.String("suite", suite))
	defer span.End()
	ctx = zlog.ContextWithValues(ctx, "component", "pipeline", "suite", suite)

	livePkids := make(map[asgen.PackageID]struct{})

	for _, section := range sc.Sections {
		for _, arch := range sc.Architectures {
			st := &Stage{
				Suite:     suite,
				Section:   section,
				Arch:      arch,
				cfg:       p.Config,
				cas:       p.CAS,
				contentsX: p.Contents,
				pkgIndex:  p.Backend,
				contentsI: p.Backend,
				registry:  p.Registry,
				policy:    config.ToPolicy(p.Config.IconPolicy),
				themes:    p.Themes,
				raster:    p.Raster,
				fonts:     p.Fonts,
				prober:    p.Prober,
				workers:   p.Workers,
			}
			err := st.run(ctx)
			for pkid := range st.pkgs {
				livePkids[pkid] = struct{}{}
			}
			st.closeAllPackages(ctx)
			if err != nil {
				// Fatal, per-stage (spec §7): abort this partition,
				// but other suites (and other partitions already
				// enqueued by the caller) may still be attempted.
				zlog.Error(ctx).Str("section", section).Str("arch", arch).Err(err).Msg("partition aborted")
				return err
			}
		}
	}

	if err := p.removePackagesNotIn(ctx, livePkids); err != nil {
		return err
	}

	return p.EmitCatalog(ctx, suite)
}

// Cleanup runs cruft GC across the whole CAS (spec §4.7 step 7: "After
// all suites complete, call gc_cruft()"), exposed separately so the
// CLI's "cleanup" subcommand can invoke it without re-running any
// suite.
func (p *Pipeline) Cleanup(ctx context.Context) error {
	return p.CAS.GCCruft(ctx)
}
