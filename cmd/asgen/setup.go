package main

import (
	"context"
	"strings"

	"github.com/quay/zlog"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend"
	"github.com/ximion/appstream-generator-sub002/cas"
	"github.com/ximion/appstream-generator-sub002/config"
	"github.com/ximion/appstream-generator-sub002/contents"
	"github.com/ximion/appstream-generator-sub002/handlers"
	"github.com/ximion/appstream-generator-sub002/hintregistry"
	"github.com/ximion/appstream-generator-sub002/icons"
	"github.com/ximion/appstream-generator-sub002/pipeline"
	"github.com/ximion/appstream-generator-sub002/raster"
)

// env bundles the handles every subcommand needs, so each one can set
// up and tear down its working set with one call each (spec §9
// "Singleton config": the Config value and everything built from it
// flows explicitly through env, never through package globals).
type env struct {
	Config   *config.Config
	CAS      *cas.Store
	Contents *contents.Index
	Registry *hintregistry.Registry

	// Backend is nil until a subcommand that needs it calls
	// loadBackend(suite); cleanup/forget/info never touch it.
	Backend interface {
		backend.PackageIndex
		backend.ContentsIndex
	}
}

// openEnv loads the config and opens the CAS + contents index, the
// minimum every subcommand needs. Callers must call env.Close when
// done.
func openEnv(ctx context.Context, g *globalFlags) (*env, error) {
	cfg, err := config.Load(ctx, g.Config)
	if err != nil {
		return nil, err
	}

	store, err := cas.Open(ctx, cfg.CacheDir(), cfg.MediaDir())
	if err != nil {
		return nil, err
	}

	cidx, err := contents.Open(ctx, cfg.ContentsCacheDir())
	if err != nil {
		store.Close()
		return nil, err
	}

	return &env{
		Config:   cfg,
		CAS:      store,
		Contents: cidx,
		Registry: hintregistry.LoadDefault(),
	}, nil
}

func (e *env) Close() {
	if e.Contents != nil {
		e.Contents.Close()
	}
	if e.CAS != nil {
		e.CAS.Close()
	}
}

// loadBackend opens the configured backend scoped to one suite (spec
// §6 subcommands all take a single suite). Building partitions lazily
// per-suite, rather than for every configured suite up front, keeps a
// missing archive for an unrelated suite from blocking this one (spec
// §7 "missing Packages index file for (suite, section, arch)" is
// fatal only to that partition/suite's run).
//
// Only "debian"/"ubuntu" and "dummy" have concrete implementations in
// this module; every other recognized backend name is a real
// distribution family this module never received a teacher or pack
// example for wiring an archive fetcher/decompressor/index parser
// against (spec §1 lists all of them as external collaborators
// specified only by interface) — see DESIGN.md.
func (e *env) loadBackend(ctx context.Context, suite string) error {
	switch e.Config.Backend {
	case config.BackendDebian, config.BackendUbuntu:
		idx, err := loadDebianIndex(ctx, e.Config, suite)
		if err != nil {
			return err
		}
		e.Backend = idx
	case config.BackendDummy:
		idx, err := loadDummyIndex(ctx, e.Config)
		if err != nil {
			return err
		}
		e.Backend = idx
	default:
		return asgen.NewError("main.loadBackend", asgen.ErrInvalid,
			"backend "+string(e.Config.Backend)+" has no concrete implementation in this build", nil)
	}
	return nil
}

// buildPipeline assembles a pipeline.Pipeline from an env whose
// backend is already loaded for suite, discovering icon themes once
// from the suite's live packages before any partition is processed
// (spec §9 "Cross-package icon search").
func buildPipeline(ctx context.Context, e *env, suite string) (*pipeline.Pipeline, error) {
	themes, err := discoverThemes(ctx, e, suite)
	if err != nil {
		return nil, err
	}

	return &pipeline.Pipeline{
		Config:   e.Config,
		CAS:      e.CAS,
		Contents: e.Contents,
		Backend:  e.Backend,
		Registry: e.Registry,
		Themes:   themes,
		Raster:   raster.ImagingRasterizer{},
		Fonts:    nil, // no FreeType binding available; spec §1 Non-goals
		Prober:   handlers.FFProbeVideoProber{},
		Workers:  0, // 0 => runtime.GOMAXPROCS(0), spec §5 "default = CPU count"
	}, nil
}

// themeDiscoveryNames is the fixed theme priority order: hicolor first
// (bundled, always present), then Adwaita, then breeze. There is no
// configured-theme slot; config.Config carries no theme setting.
func themeDiscoveryNames() []string {
	return []string{"hicolor", "Adwaita", "breeze"}
}

// discoverThemes loads the bundled hicolor index unconditionally, then
// best-effort searches every package in suite for an index.theme under
// each remaining candidate theme name, parsing whichever ones are
// found. A theme absent from the repository is simply skipped: the
// resolver degrades gracefully to whichever themes it could load (spec
// §4.5 step 2 only requires hicolor to be guaranteed).
func discoverThemes(ctx context.Context, e *env, suite string) ([]*icons.ThemeIndex, error) {
	hicolor, err := icons.LoadHicolorTheme()
	if err != nil {
		return nil, err
	}
	out := []*icons.ThemeIndex{hicolor}

	sc, ok := e.Config.Suites[suite]
	if !ok || e.Backend == nil {
		return out, nil
	}

	wanted := make(map[string]bool)
	for _, n := range themeDiscoveryNames() {
		if !strings.EqualFold(n, "hicolor") {
			wanted[n] = true
		}
	}

	found := make(map[string]*icons.ThemeIndex)
	for _, section := range sc.Sections {
		for _, arch := range sc.Architectures {
			if len(found) == len(wanted) {
				break
			}
			pkgs, err := e.Backend.PackagesFor(ctx, suite, section, arch)
			if err != nil {
				zlog.Warn(ctx).Str("section", section).Str("arch", arch).Err(err).Msg("listing packages for theme discovery failed")
				continue
			}
			for _, p := range pkgs {
				if len(found) == len(wanted) {
					break
				}
				scanPackageForThemes(ctx, p, wanted, found)
				p.Close()
			}
		}
	}

	for _, n := range themeDiscoveryNames() {
		if ti, ok := found[n]; ok {
			out = append(out, ti)
		}
	}
	return out, nil
}

func scanPackageForThemes(ctx context.Context, p backend.Package, wanted map[string]bool, found map[string]*icons.ThemeIndex) {
	paths, err := p.Contents(ctx)
	if err != nil {
		return
	}
	for _, path := range paths {
		for name := range wanted {
			if _, already := found[name]; already {
				continue
			}
			if path != "/usr/share/icons/"+name+"/index.theme" {
				continue
			}
			data, err := p.FileData(ctx, path)
			if err != nil {
				continue
			}
			ti, err := icons.ParseThemeIndex(data)
			if err != nil {
				zlog.Warn(ctx).Str("theme", name).Err(err).Msg("parsing discovered theme index failed")
				continue
			}
			found[name] = ti
		}
	}
}
