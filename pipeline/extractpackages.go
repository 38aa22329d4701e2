package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quay/zlog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/extractor"
	"github.com/ximion/appstream-generator-sub002/handlers"
	"github.com/ximion/appstream-generator-sub002/metrics"
	"github.com/ximion/appstream-generator-sub002/result"
)

// prometheusTimer starts an ExtractionDuration observation and returns
// a func to stop it, so call sites read as a single defer line.
func prometheusTimer(suite, section, arch string) func() {
	timer := prometheus.NewTimer(metrics.ExtractionDuration.WithLabelValues(suite, section, arch))
	return func() { timer.ObserveDuration() }
}

// extractPackagesStep maps s.newPkids through the Extractor with a
// bounded worker pool, exactly the shape of
// indexer/layerscanner.layerScanner.Scan: an errgroup.WithContext plus
// a weighted semaphore capping in-flight workers, one goroutine
// launched per item immediately and gated by the semaphore rather than
// a fixed-size pool of long-lived goroutines (spec §4.7 step 4, spec
// §5 "Scheduling").
//
// A failure extracting one package never aborts the group (spec §7
// "a failure in one package must not poison others"): Extractor.Process
// itself converts unexpected failures into hints, and the rare error
// this step does see (e.g. CAS.PackageExists failing mid-run) is
// recorded per-pkid and skipped rather than returned to errgroup, so
// one bad pkid can't cancel its siblings' contexts.
func extractPackagesStep(ctx context.Context, s *Stage) (State, error) {
	s.results = make(map[asgen.PackageID]*result.Aggregator, len(s.newPkids))
	s.errored = make(map[asgen.PackageID]string)

	allPkids := make([]asgen.PackageID, 0, len(s.pkgs))
	for pkid := range s.pkgs {
		allPkids = append(allPkids, pkid)
	}
	iconsMap, err := s.contentsX.IconsMap(ctx, allPkids)
	if err != nil {
		return Terminal, err
	}
	localeMap, err := s.contentsX.LocaleMap(ctx, allPkids)
	if err != nil {
		return Terminal, err
	}

	fetch := func(pkid asgen.PackageID, path string) ([]byte, error) {
		p, ok := s.pkgs[pkid]
		if !ok {
			return nil, asgen.NewError("pipeline.fetch", asgen.ErrNotFound, "package not in current partition: "+string(pkid), nil)
		}
		return p.FileData(ctx, path)
	}

	var screens *handlers.ScreenshotHandler
	if s.cfg.Features.Screenshots {
		screens = handlers.NewScreenshotHandler(s.prober)
	}

	workers := s.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	for _, pkid := range s.newPkids {
		pkid := pkid
		p := s.pkgs[pkid]
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			metrics.WorkerPoolOccupancy.Inc()
			defer metrics.WorkerPoolOccupancy.Dec()

			timer := prometheusTimer(s.Suite, s.Section, s.Arch)
			defer timer()

			ex := &extractor.Extractor{
				CAS:          s.cas,
				IconsMap:     iconsMap,
				LocaleMap:    localeMap,
				Fetch:        fetch,
				IconThemes:   s.themes,
				Raster:       s.raster,
				IconPolicy:   s.policy,
				AllowUpscale: s.cfg.Features.AllowIconUpscale,
				MediaBaseURL: s.cfg.MediaBaseURL,
				Screenshots:  screens,
				MaxVideoMiB:  s.cfg.MaxVideoFileSize,
				Fonts:        s.fonts,
				Registry:     s.registry,
				Features:     s.cfg.Features.ToExtractorFeatures(),
			}

			res, ok, perr := ex.Process(gctx, p)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case perr != nil:
				zlog.Warn(gctx).Str("pkid", string(pkid)).Err(perr).Msg("pkg-extract-error")
				s.errored[pkid] = perr.Error()
			case !ok:
				// already processed; shouldn't normally happen since
				// Partition filtered these out, but stays non-fatal.
			default:
				s.results[pkid] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Terminal, err
	}
	return MergeResults, nil
}
