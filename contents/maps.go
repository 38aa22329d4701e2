package contents

import (
	"context"
	"path"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// ContentsMap builds path -> pkid over the given pkids in a single
// streaming bolt transaction (spec §4.2: "Maps are built by a single
// streaming pass over the stored list and are returned cheaply").
//
// If two packages in pkids both claim the same path, the later one in
// iteration order wins; callers that care about determinism should
// pass pkids in a stable order.
func (i *Index) ContentsMap(ctx context.Context, pkids []asgen.PackageID) (map[string]asgen.PackageID, error) {
	out := make(map[string]asgen.PackageID)
	err := i.forEachPath(pkids, func(pkid asgen.PackageID, p string) {
		out[p] = pkid
	})
	return out, err
}

// iconPathPrefixes are the two locations icon resolution searches
// (spec §4.5 resolution order): themed icons under
// /usr/share/icons/** and legacy pixmaps directly under
// /usr/share/pixmaps/*.
var iconPathPrefixes = []string{"/usr/share/icons/", "/usr/share/pixmaps/"}

// IconsMap builds path -> pkid restricted to paths under
// /usr/share/icons/** and /usr/share/pixmaps/* (spec §4.2).
func (i *Index) IconsMap(ctx context.Context, pkids []asgen.PackageID) (map[string]asgen.PackageID, error) {
	out := make(map[string]asgen.PackageID)
	err := i.forEachPath(pkids, func(pkid asgen.PackageID, p string) {
		if !isUnderIconPrefix(p) {
			return
		}
		out[p] = pkid
	})
	return out, err
}

func isUnderIconPrefix(p string) bool {
	for _, prefix := range iconPathPrefixes {
		if strings.HasPrefix(p, prefix) {
			if prefix == "/usr/share/pixmaps/" {
				// "/usr/share/pixmaps/*" is non-recursive: reject
				// any further subdirectory under it.
				rest := p[len(prefix):]
				if strings.Contains(rest, "/") {
					return false
				}
			}
			return true
		}
	}
	return false
}

// localeFilePrefix is where gettext .mo translation domains live
// (spec §4.6 step 7 reads them via the /usr/share/locale tree).
const localeFilePrefix = "/usr/share/locale/"

// LocaleMap builds basename -> pkid for every file under
// /usr/share/locale/ across pkids (spec §4.2).
func (i *Index) LocaleMap(ctx context.Context, pkids []asgen.PackageID) (map[string]asgen.PackageID, error) {
	out := make(map[string]asgen.PackageID)
	err := i.forEachPath(pkids, func(pkid asgen.PackageID, p string) {
		if !strings.HasPrefix(p, localeFilePrefix) {
			return
		}
		out[path.Base(p)] = pkid
	})
	return out, err
}

func (i *Index) forEachPath(pkids []asgen.PackageID, fn func(pkid asgen.PackageID, p string)) error {
	err := i.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketContents))
		for _, pkid := range pkids {
			v := b.Get([]byte(pkid))
			if v == nil {
				continue
			}
			for _, p := range splitNonEmpty(string(v)) {
				fn(pkid, p)
			}
		}
		return nil
	})
	if err != nil {
		return asgen.NewError("contents.forEachPath", asgen.ErrInternal, "streaming contents failed", err)
	}
	return nil
}
