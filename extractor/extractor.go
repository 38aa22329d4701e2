// Package extractor implements the per-package orchestration step
// (spec §4.6, component C7): it runs the metadata parsers (C4), the
// icon resolver (C5), and the locale/font/screenshot handlers (C6)
// against one backend.Package and produces a result.Aggregator.
//
// Modeled on the teacher's dpkg.Scanner.Scan: a single entry point that
// lists a package's files, classifies them by fixed path prefixes, and
// walks a short, strictly ordered pipeline of sub-steps, decorating the
// context with zlog fields and a runtime/trace region the same way.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime/trace"
	"sort"
	"strings"

	"github.com/quay/zlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ximion/appstream-generator-sub002"
	"github.com/ximion/appstream-generator-sub002/backend"
	"github.com/ximion/appstream-generator-sub002/cas"
	"github.com/ximion/appstream-generator-sub002/handlers"
	"github.com/ximion/appstream-generator-sub002/icons"
	"github.com/ximion/appstream-generator-sub002/metadata"
	"github.com/ximion/appstream-generator-sub002/result"
)

var tracer = otel.Tracer("github.com/ximion/appstream-generator-sub002/extractor")

// Features are the optional handler toggles from spec §6's config
// "Features" map. Every field corresponds to one named key there.
type Features struct {
	Validate           bool
	ProcessDesktop     bool
	ProcessLocale      bool
	ProcessFonts       bool
	Screenshots        bool
	ScreenshotVideos   bool
	StoreScreenshots   bool
	AllowIconUpscale   bool
	Optipng            bool
	MetadataTimestamps bool
}

// HintRegistry is the subset of the external hint-tag registry (spec
// §9) the extractor needs: whether a tag is registered at all, and
// whether a registered tag carries error severity (which drops its
// component in Finalize).
type HintRegistry interface {
	Known(tag string) bool
	IsError(tag string) bool
}

// FileFetcher reads one file's bytes out of whichever package in the
// current (suite, section, arch) partition owns it, for icon and
// locale sources that live in a package other than the one currently
// being extracted (spec §9 "Cross-package icon search").
type FileFetcher func(pkid asgen.PackageID, path string) ([]byte, error)

// Extractor holds everything shared across one (suite, section, arch)
// partition's extraction run; the pipeline (C8) constructs one per
// partition and calls Process once per package.
type Extractor struct {
	CAS *cas.Store

	// IconsMap/LocaleMap are the cross-package union indexes built by
	// contents.Index.IconsMap/LocaleMap over the partition's pkids
	// (spec §4.2, §9).
	IconsMap  map[string]asgen.PackageID
	LocaleMap map[string]asgen.PackageID
	Fetch     FileFetcher

	IconThemes   []*icons.ThemeIndex
	Raster       icons.Rasterizer
	IconPolicy   icons.Policy
	AllowUpscale bool
	MediaBaseURL string

	Screenshots *handlers.ScreenshotHandler
	MaxVideoMiB int

	Fonts      handlers.FontRenderer
	SampleText string

	Registry HintRegistry
	Features Features
}

// classified groups one package's content paths by the fixed prefixes
// spec §4.4/§4.6 step 1 matches on.
type classified struct {
	metainfo map[string][]byte
	desktop  map[string][]byte
	fonts    map[string][]byte
}

const (
	prefixMetainfo     = "/usr/share/metainfo/"
	prefixAppdataLegacy = "/usr/share/appdata/"
	prefixDesktop      = "/usr/share/applications/"
	prefixFonts        = "/usr/share/fonts/"
)

// Process runs the full spec §4.6 algorithm for one package. ok is
// false when the CAS already has a record for p's pkid (already
// processed), in which case res is nil and the caller should skip the
// package entirely (spec §4.6 "Contract").
func (e *Extractor) Process(ctx context.Context, p backend.Package) (res *result.Aggregator, ok bool, err error) {
	defer trace.StartRegion(ctx, "Extractor.Process").End()
	pkid := p.ID()
	trace.Logf(ctx, "pkid", "%s", pkid)
	ctx = zlog.ContextWithValues(ctx, "component", "extractor", "pkid", string(pkid))

	ctx, span := tracer.Start(ctx, "Extractor.Process")
	span.SetAttributes(attribute.String("pkid", string(pkid)))
	defer span.End()

	if e.CAS != nil {
		exists, cerr := e.CAS.PackageExists(ctx, pkid)
		if cerr != nil {
			return nil, false, cerr
		}
		if exists {
			zlog.Debug(ctx).Msg("already processed, skipping")
			return nil, false, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			// spec §7 "Propagation": an unexpected per-package failure
			// becomes a hint, not a crash that poisons the worker pool.
			zlog.Error(ctx).Interface("panic", r).Msg("pkg-processing-exception")
			if res == nil {
				res = result.New(pkid, p.Name())
			}
			e.addHint(res, asgen.GeneralCID, "pkg-processing-exception", map[string]string{"detail": fmt.Sprint(r)})
			res.Finalize(e.isErrorFn())
			ok = true
			err = nil
		}
	}()

	paths, cerr := p.Contents(ctx)
	if cerr != nil {
		zlog.Warn(ctx).Err(cerr).Msg("pkg-extract-error")
		res = result.New(pkid, p.Name())
		e.addHint(res, asgen.GeneralCID, "pkg-extract-error", map[string]string{"error": cerr.Error()})
		res.Finalize(e.isErrorFn())
		return res, true, nil
	}

	cls := classify(paths)

	pkgFiles := make(map[string][]byte, len(cls.metainfo)+len(cls.desktop))
	for _, group := range []map[string][]byte{cls.metainfo, cls.desktop, cls.fonts} {
		for f := range group {
			data, ferr := p.FileData(ctx, f)
			if ferr != nil {
				zlog.Warn(ctx).Str("path", f).Err(ferr).Msg("failed reading package file")
				continue
			}
			group[f] = data
			pkgFiles[f] = data
		}
	}

	extractOpts := metadata.ExtractOptions{IgnoreNoDisplay: false}
	mres := metadata.Extract(cls.metainfo, cls.desktop, extractOpts)

	res = result.New(pkid, p.Name())
	for _, h := range mres.Hints {
		e.addHint(res, h.CID, h.Tag, nil)
	}
	for _, c := range mres.Components {
		if err := res.AddComponent(c, nil); err != nil {
			e.addHint(res, asgen.GeneralCID, "pkg-extract-error", map[string]string{"cid": c.ID, "error": err.Error()})
		}
	}

	if e.Features.Validate {
		for _, c := range res.Components() {
			for _, h := range metadata.ValidateMetainfo(c) {
				e.addHint(res, h.CID, h.Tag, nil)
			}
		}
	}

	// Step 5: icon resolution.
	if e.Raster != nil {
		e.resolveIcons(ctx, res, pkgFiles, pkid)
	}

	// Step 6: screenshots (feature-flagged).
	if e.Features.Screenshots && e.Screenshots != nil {
		e.processScreenshots(ctx, res)
	}

	// Step 7: locale completion (feature-flagged).
	if e.Features.ProcessLocale {
		e.processLocale(ctx, res, pkid, pkgFiles)
	}

	// Step 8: font handling.
	if e.Features.ProcessFonts && e.Fonts != nil {
		e.processFonts(ctx, res, cls.fonts, pkid)
	}

	res.Finalize(e.isErrorFn())
	if cerr := p.Close(); cerr != nil {
		zlog.Warn(ctx).Err(cerr).Msg("closing package failed")
	}

	return res, true, nil
}

// isErrorFn adapts Registry.IsError for result.Finalize, defaulting to
// "nothing is an error" when no registry is wired (it still should be,
// per spec §9's "must load before any extraction begins" invariant,
// but the extractor itself doesn't enforce that — the pipeline does).
func (e *Extractor) isErrorFn() func(tag string) bool {
	if e.Registry == nil {
		return func(string) bool { return false }
	}
	return e.Registry.IsError
}

// addHint routes a hint through the registry's "unknown tag" rule
// (spec §9 "Hint registry": an unrecognized tag is reported via the
// reserved internal-unknown-tag hint, carrying the original tag name).
func (e *Extractor) addHint(res *result.Aggregator, cid, tag string, vars map[string]string) {
	if e.Registry != nil && !e.Registry.Known(tag) {
		res.AddHint(cid, "internal-unknown-tag", map[string]string{"tag": tag})
		return
	}
	res.AddHint(cid, tag, vars)
}

func classify(paths []string) classified {
	cls := classified{
		metainfo: map[string][]byte{},
		desktop:  map[string][]byte{},
		fonts:    map[string][]byte{},
	}
	for _, p := range paths {
		switch {
		case strings.HasSuffix(p, ".xml") && (strings.HasPrefix(p, prefixMetainfo) || strings.HasPrefix(p, prefixAppdataLegacy)):
			cls.metainfo[p] = nil
		case strings.HasSuffix(p, ".desktop") && strings.HasPrefix(p, prefixDesktop):
			cls.desktop[p] = nil
		case strings.HasPrefix(p, prefixFonts) && (strings.HasSuffix(p, ".ttf") || strings.HasSuffix(p, ".otf")):
			cls.fonts[p] = nil
		}
	}
	return cls
}

func (e *Extractor) resolveIcons(ctx context.Context, res *result.Aggregator, pkgFiles map[string][]byte, pkid asgen.PackageID) {
	resolver := &icons.Resolver{
		Themes:       e.IconThemes,
		IconsMap:     e.IconsMap,
		Fetch:        icons.FileFetcher(e.Fetch),
		Raster:       e.Raster,
		Writer:       e.CAS,
		AllowUpscale: e.AllowUpscale,
		Optimize:     e.Features.Optipng,
	}
	for _, c := range res.Components() {
		iconName := primaryIconName(c)
		if iconName == "" {
			continue
		}
		gcid, ok := res.GCIDOf(c.ID)
		if !ok {
			continue
		}
		hints := resolver.Resolve(gcid, c, iconName, res.PackageName(), pkid, pkgFiles, e.IconPolicy, e.MediaBaseURL)
		for _, tag := range hints {
			e.addHint(res, c.ID, tag, nil)
		}
	}
}

// primaryIconName returns the name a component's metainfo/desktop merge
// recorded for its icon, stripping any extension so it matches theme
// directory entries by base name (spec §4.5 "Resolution order").
func primaryIconName(c *asgen.Component) string {
	for _, ic := range c.Icons {
		if ic.Name == "" {
			continue
		}
		if path.IsAbs(ic.Name) {
			return ic.Name
		}
		return strings.TrimSuffix(ic.Name, path.Ext(ic.Name))
	}
	return ""
}

func (e *Extractor) processScreenshots(ctx context.Context, res *result.Aggregator) {
	for _, c := range res.Components() {
		for si := range c.Screenshots {
			sc := &c.Screenshots[si]
			for ii := range sc.Images {
				img := &sc.Images[ii]
				if img.Kind != asgen.ImageSource || img.URL == "" {
					continue
				}
				data, err := e.Screenshots.DownloadImage(ctx, img.URL)
				if err != nil {
					e.addHint(res, c.ID, "screenshot-download-error", map[string]string{"url": img.URL})
					continue
				}
				gcid, ok := res.GCIDOf(c.ID)
				if !ok {
					continue
				}
				c.AddFingerprintSource(data)
				if err := res.UpdateComponentGCID(c, data); err != nil {
					continue
				}
				gcid, _ = res.GCIDOf(c.ID)
				thumbs, err := e.Screenshots.RenderThumbnails(data)
				if err != nil {
					e.addHint(res, c.ID, "screenshot-render-error", nil)
					continue
				}
				if e.Features.StoreScreenshots && e.CAS != nil {
					if dir, err := e.CAS.EnsureMediaDir(gcid, "screenshots"); err == nil {
						writeMediaFile(dir, "source.png", data)
						for key, thumb := range thumbs {
							writeMediaFile(dir, key+".png", thumb)
						}
					}
				}
			}
		}
	}
}

func (e *Extractor) processLocale(ctx context.Context, res *result.Aggregator, pkid asgen.PackageID, pkgFiles map[string][]byte) {
	handler := handlers.LocaleHandler{}
	for _, c := range res.Components() {
		domains := c.Provided["translation"]
		if len(domains) == 0 {
			continue
		}
		domainCounts := make(map[string]map[string]int, len(domains))
		for _, domain := range domains {
			domainCounts[domain] = e.countDomainLocales(domain, pkid, pkgFiles)
		}
		totals := handler.SumDomainCounts(domainCounts)
		handler.ApplyLanguages(c, totals)
	}
}

func (e *Extractor) countDomainLocales(domain string, pkid asgen.PackageID, pkgFiles map[string][]byte) map[string]int {
	counts := make(map[string]int)
	suffix := "/LC_MESSAGES/" + domain + ".mo"
	for localePath, ownerPkid := range e.LocaleMap {
		if !strings.HasSuffix(localePath, suffix) {
			continue
		}
		locale := localeFromPath(localePath)
		if locale == "" {
			continue
		}
		data, ok := pkgFiles[localePath]
		if !ok {
			var err error
			if ownerPkid == pkid {
				continue // should have been in pkgFiles already; skip rather than re-fetch self
			}
			data, err = e.Fetch(ownerPkid, localePath)
			if err != nil {
				continue
			}
		}
		n, err := handlers.MOStringCount(data)
		if err != nil {
			continue
		}
		counts[locale] = n
	}
	return counts
}

func localeFromPath(p string) string {
	const prefix = "/usr/share/locale/"
	if !strings.HasPrefix(p, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(p, prefix)
	idx := strings.Index(rest, "/")
	if idx < 0 {
		return ""
	}
	return rest[:idx]
}

func (e *Extractor) processFonts(ctx context.Context, res *result.Aggregator, fontFiles map[string][]byte, pkid asgen.PackageID) {
	paths := make([]string, 0, len(fontFiles))
	for p := range fontFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	handler := handlers.FontHandler{Renderer: e.Fonts, Writer: e.CAS}
	for _, c := range res.Components() {
		if c.Kind != asgen.KindFont {
			continue
		}
		for _, fp := range paths {
			data := fontFiles[fp]
			render, err := handler.Process(c, data, e.SampleText, policySizes(e.IconPolicy))
			if err != nil {
				e.addHint(res, c.ID, "font-render-error", map[string]string{"path": fp})
				continue
			}
			c.AddFingerprintSource(data)
			_ = res.UpdateComponentGCID(c, data)
			gcid, ok := res.GCIDOf(c.ID)
			if !ok || e.CAS == nil {
				continue
			}
			for size, png := range render.IconSamples {
				if dir, err := e.CAS.EnsureMediaDir(gcid, "icons/"+size.String()); err == nil {
					name := writeMediaFile(dir, res.PackageName()+"_"+path.Base(fp)+".png", png)
					if name != "" {
						c.Icons = append(c.Icons, asgen.Icon{Kind: asgen.IconCached, Name: name, Width: size.Width, Height: size.Height, Scale: size.Scale})
					}
				}
			}
			for size, png := range render.BannerImages {
				if dir, err := e.CAS.EnsureMediaDir(gcid, "banners"); err == nil {
					writeMediaFile(dir, fmt.Sprintf("%dx%d.png", size.Width, size.Height), png)
				}
			}
		}
	}
}

func policySizes(policy icons.Policy) []icons.Size {
	out := make([]icons.Size, 0, len(policy))
	for _, e := range policy {
		out = append(out, e.Size)
	}
	return out
}

func writeMediaFile(dir, name string, data []byte) string {
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return ""
	}
	return name
}
