package contents

import (
	"context"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// AddContents records the deduplicated path list for pkid. Each call
// overwrites any previous list for that pkid (spec §4.2 invariant:
// "each path string appears at most once per pkid; duplicates are
// collapsed on insertion").
func (i *Index) AddContents(ctx context.Context, pkid asgen.PackageID, paths []string) error {
	seen := make(map[string]struct{}, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		deduped = append(deduped, p)
	}
	err := i.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketContents)).Put([]byte(pkid), []byte(strings.Join(deduped, "\n")))
	})
	if err != nil {
		return asgen.NewError("contents.AddContents", asgen.ErrInternal, "writing contents row failed", err)
	}
	return nil
}

// ContentsOf returns the recorded path list for pkid, or nil if pkid
// has no recorded contents.
func (i *Index) ContentsOf(ctx context.Context, pkid asgen.PackageID) ([]string, error) {
	var out []string
	err := i.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketContents)).Get([]byte(pkid))
		if v == nil {
			return nil
		}
		out = splitNonEmpty(string(v))
		return nil
	})
	if err != nil {
		return nil, asgen.NewError("contents.ContentsOf", asgen.ErrInternal, "reading contents row failed", err)
	}
	return out, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
