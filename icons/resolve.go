package icons

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
)

// MediaWriter is the subset of cas.Store the resolver needs to place
// rendered icons under a component's media directory.
type MediaWriter interface {
	EnsureMediaDir(gcid, sub string) (string, error)
}

// FileFetcher reads one file out of the package that owns it, used to
// pull candidate icon source bytes from the cross-package icon union
// (spec §4.5 step 2: "search the cross-package union of
// /usr/share/icons/<theme>/...").
type FileFetcher func(pkid asgen.PackageID, path string) ([]byte, error)

// Resolver implements the icon lookup and rasterization pipeline (spec
// §4.5). Themes must already be in priority order; the CLI passes
// hicolor, then Adwaita, then breeze (there is no configured-theme slot).
type Resolver struct {
	Themes       []*ThemeIndex
	IconsMap     map[string]asgen.PackageID // icon path -> owning pkid, cross-package union
	Fetch        FileFetcher
	Raster       Rasterizer
	Writer       MediaWriter
	AllowUpscale bool

	// Optimize runs every newly written icon through optipng (spec §6
	// Features "optipng") before it's considered stored.
	Optimize bool
}

// candidate is one icon source file discovered for a requested size.
type candidate struct {
	path   string
	pkid   asgen.PackageID
	size   int // the theme directory's nominal size, or 0 for pixmaps/absolute paths
	kind   SourceKind
}

// Resolve resolves iconName for component c against policy, writing
// any store-cached sizes under gcid's media directory and attaching
// Icon entries to c. currentPkgFiles/currentPkid let step 1 (absolute
// path within the current package) succeed without a Fetch round trip.
func (r *Resolver) Resolve(gcid string, c *asgen.Component, iconName, pkgName string, currentPkid asgen.PackageID, currentPkgFiles map[string][]byte, policy Policy, mediaBaseURL string) []string {
	var hints []string
	sizes := policy
	if !policy.RequiresDefaultSize() {
		sizes = append(append(Policy{}, policy...), PolicyEntry{Size: DefaultSize, StoreCached: true})
	}

	// storedCandidates remembers, for every size successfully cached,
	// the source candidate behind it — the mandatory-64x64 fallback
	// below re-rasterizes the smallest one at least 64 wide rather than just
	// relabeling an Icon entry that points at a different size
	// directory (spec §4.5 "the resolver attempts to derive one by
	// downscaling").
	var storedCandidates []struct {
		cand candidate
		size Size
	}

	for _, entry := range sizes {
		cand, ok := r.findCandidate(iconName, pkgName, currentPkid, currentPkgFiles, entry.Size)
		if !ok {
			continue
		}

		if entry.StoreCached {
			destDir, err := r.Writer.EnsureMediaDir(gcid, "icons/"+entry.Size.String())
			if err == nil {
				destPath := filepath.Join(destDir, cachedIconFilename(pkgName, cand.path))
				if _, statErr := os.Stat(destPath); statErr == nil {
					// Duplication rule (spec §4.5): destination already
					// rendered, skip raster but still attach the entry.
					c.Icons = append(c.Icons, asgen.Icon{
						Kind:   asgen.IconCached,
						Name:   cachedIconFilename(pkgName, cand.path),
						Width:  entry.Size.Width,
						Height: entry.Size.Height,
						Scale:  entry.Size.Scale,
					})
					storedCandidates = append(storedCandidates, struct {
						cand candidate
						size Size
					}{cand, entry.Size})
					continue
				}
			}
		}

		png, scaledUp, ok, err := r.rasterizeCandidate(cand, entry.Size)
		if err != nil || !ok {
			if entry.Size == DefaultSize {
				hints = append(hints, "icon-too-small")
			}
			continue
		}
		if scaledUp {
			hints = append(hints, "icon-scaled-up")
		}
		if entry.StoreCached {
			if err := r.store(gcid, pkgName, cand.path, entry.Size, png); err != nil {
				continue
			}
			c.Icons = append(c.Icons, asgen.Icon{
				Kind:   asgen.IconCached,
				Name:   cachedIconFilename(pkgName, cand.path),
				Width:  entry.Size.Width,
				Height: entry.Size.Height,
				Scale:  entry.Size.Scale,
			})
			storedCandidates = append(storedCandidates, struct {
				cand candidate
				size Size
			}{cand, entry.Size})
		}
		if entry.StoreRemote {
			c.Icons = append(c.Icons, asgen.Icon{
				Kind:   asgen.IconRemote,
				Name:   mediaBaseURL + "/" + gcid + "/icons/" + entry.Size.String() + "/" + cachedIconFilename(pkgName, cand.path),
				Width:  entry.Size.Width,
				Height: entry.Size.Height,
				Scale:  entry.Size.Scale,
			})
		}
	}

	if !c.HasIconOfSize(DefaultSize.Width, DefaultSize.Height, DefaultSize.Scale) {
		var largest *candidate
		var largestSize Size
		for i, sc := range storedCandidates {
			if sc.size.Width < DefaultSize.Width {
				continue
			}
			if largest == nil || sc.size.Width < largestSize.Width {
				largest = &storedCandidates[i].cand
				largestSize = sc.size
			}
		}
		if largest != nil {
			png, _, ok, err := r.rasterizeCandidate(*largest, DefaultSize)
			if err == nil && ok {
				if err := r.store(gcid, pkgName, largest.path, DefaultSize, png); err == nil {
					c.Icons = append(c.Icons, asgen.Icon{
						Kind:   asgen.IconCached,
						Name:   cachedIconFilename(pkgName, largest.path),
						Width:  DefaultSize.Width,
						Height: DefaultSize.Height,
						Scale:  DefaultSize.Scale,
					})
				} else {
					hints = append(hints, "icon-not-found")
				}
			} else {
				hints = append(hints, "icon-not-found")
			}
		} else {
			hints = append(hints, "icon-not-found")
		}
	}

	return hints
}

// findCandidate implements the three-step resolution order (spec §4.5
// "Resolution order").
func (r *Resolver) findCandidate(iconName, pkgName string, currentPkid asgen.PackageID, currentPkgFiles map[string][]byte, size Size) (candidate, bool) {
	if path.IsAbs(iconName) {
		if _, ok := currentPkgFiles[iconName]; ok {
			if kind, allowed := classifySource(iconName); allowed {
				return candidate{path: iconName, pkid: currentPkid, kind: kind}, true
			}
		}
		return candidate{}, false
	}

	if cand, ok := r.findInThemes(iconName, size); ok {
		return cand, true
	}

	if size == DefaultSize {
		return r.findInPixmaps(iconName)
	}
	return candidate{}, false
}

// findInThemes picks, among every directory matching size, the
// smallest one whose declared size is still >= the request (spec
// §4.5 "Fallback Scaling": downscale from the smallest larger
// directory). Only when no directory is that large does it fall back
// to the largest directory smaller than the request, the separate
// upscale tier.
func (r *Resolver) findInThemes(iconName string, size Size) (candidate, bool) {
	for _, theme := range r.Themes {
		if theme == nil {
			continue
		}
		var bestDown, bestUp candidate
		haveDown, haveUp := false, false
		for _, dir := range theme.Dirs {
			if !dir.MatchesSize(size.Width, size.Scale) {
				continue
			}
			for _, ext := range []string{".png", ".svg", ".svgz", ".xpm", ".jpg", ".jpeg"} {
				p := "/usr/share/icons/" + theme.Name + "/" + dir.Path + "/" + iconName + ext
				pkid, ok := r.IconsMap[p]
				if !ok {
					// index.theme's Name is a display name ("Hicolor" for
					// hicolor); retry with its lowercase directory form.
					p = "/usr/share/icons/" + strings.ToLower(theme.Name) + "/" + dir.Path + "/" + iconName + ext
					pkid, ok = r.IconsMap[p]
				}
				if !ok {
					continue
				}
				kind, allowed := classifySource(p)
				if !allowed {
					continue
				}
				cand := candidate{path: p, pkid: pkid, size: dir.Size, kind: kind}
				if dir.Size >= size.Width {
					if !haveDown || dir.Size < bestDown.size {
						bestDown = cand
						haveDown = true
					}
				} else if !haveUp || dir.Size > bestUp.size {
					bestUp = cand
					haveUp = true
				}
			}
		}
		if haveDown {
			return bestDown, true
		}
		if haveUp {
			return bestUp, true
		}
	}
	return candidate{}, false
}

func (r *Resolver) findInPixmaps(iconName string) (candidate, bool) {
	for _, ext := range []string{".png", ".jpg", ".svgz", ".svg", ".gif", ".ico", ".xpm"} {
		p := "/usr/share/pixmaps/" + iconName + ext
		pkid, ok := r.IconsMap[p]
		if !ok {
			continue
		}
		kind, allowed := classifySource(p)
		if !allowed {
			continue
		}
		return candidate{path: p, pkid: pkid, kind: kind}, true
	}
	return candidate{}, false
}

// rasterizeCandidate applies the rasterization constraints (spec §4.5
// "Rasterization") and returns the rendered PNG bytes, whether the
// image was scaled up, and whether the candidate was usable at all.
func (r *Resolver) rasterizeCandidate(cand candidate, size Size) ([]byte, bool, bool, error) {
	data, err := r.Fetch(cand.pkid, cand.path)
	if err != nil {
		return nil, false, false, err
	}

	if cand.kind == SourceXPM {
		minSrc := 48
		if !r.AllowUpscale {
			minSrc = size.Width
		}
		if size != DefaultSize || cand.size < minSrc {
			return nil, false, false, nil
		}
	}

	if size == DefaultSize && cand.size > 0 && cand.size < 48 {
		return nil, false, false, nil
	}

	png, err := r.Raster.Rasterize(data, cand.kind, size.Width, size.Height)
	if err != nil {
		return nil, false, false, err
	}
	scaledUp := cand.size > 0 && size.Width > cand.size
	return png, scaledUp, true, nil
}

func (r *Resolver) store(gcid, pkgName, srcPath string, size Size, png []byte) error {
	dir, err := r.Writer.EnsureMediaDir(gcid, "icons/"+size.String())
	if err != nil {
		return err
	}
	dest := filepath.Join(dir, cachedIconFilename(pkgName, srcPath))
	if err := os.WriteFile(dest, png, 0o644); err != nil {
		return asgen.NewError("icons.store", asgen.ErrInternal, "writing rendered icon failed", err)
	}
	if r.Optimize {
		optimizePNG(dest)
	}
	return nil
}

// optimizePNG shells out to optipng, the same external-binary shellout
// style handlers.FFProbeVideoProber uses for ffprobe. Optimization is a
// size-reduction nicety, not a correctness requirement, so a missing
// binary or a failing run is silently ignored and the unoptimized file
// already on disk is kept.
func optimizePNG(path string) {
	cmd := exec.Command("optipng", "-quiet", path)
	_ = cmd.Run()
}

func cachedIconFilename(pkgName, srcPath string) string {
	base := path.Base(srcPath)
	trimmed := strings.TrimSuffix(base, path.Ext(base))
	return fmt.Sprintf("%s_%s.png", pkgName, trimmed)
}

// ThemeNames is a small test/debug helper returning theme names in
// resolver priority order.
func (r *Resolver) ThemeNames() []string {
	names := make([]string, 0, len(r.Themes))
	for _, t := range r.Themes {
		if t != nil {
			names = append(names, t.Name)
		}
	}
	return names
}
