// Package contents implements the package-contents index (spec §4.2,
// component C2): a per-package file-list cache keyed by pkid, with
// cheap derived maps for icon/locale/content lookups across a whole
// set of packages.
//
// It is a second bbolt database, separate from the CAS, so its
// lifecycle (rebuilt or pruned independently of component metadata)
// doesn't entangle with cas.Store's transactions.
package contents

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

const bucketContents = "contents"

// Index is the package-contents cache.
type Index struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the contents index at
// "<cacheDir>/contents.db" (spec §6 "On-disk layout").
func Open(ctx context.Context, cacheDir string) (*Index, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, asgen.NewError("contents.Open", asgen.ErrInternal, "creating cache directory failed", err)
	}
	db, err := bbolt.Open(filepath.Join(cacheDir, "contents.db"), 0o644, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, asgen.NewError("contents.Open", asgen.ErrInternal, "opening bolt database failed", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketContents))
		return err
	}); err != nil {
		db.Close()
		return nil, asgen.NewError("contents.Open", asgen.ErrInternal, "initializing bucket failed", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying bolt database handle.
func (i *Index) Close() error { return i.db.Close() }
