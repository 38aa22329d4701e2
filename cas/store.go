package cas

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/quay/zlog"
	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// Store is the content-addressed store: the bbolt-backed KV half plus
// the on-disk media tree it exclusively owns (spec §3 "Ownership").
type Store struct {
	db        *bbolt.DB
	mediaRoot string
}

// Open opens (creating if necessary) the CAS at cacheDir/cas.db and
// the media tree at mediaRoot, ensuring all buckets exist.
//
// cacheDir and mediaRoot correspond to "<workspace>/cache/main" and
// "<workspace>/export/media" respectively (spec §6 "On-disk layout").
func Open(ctx context.Context, cacheDir, mediaRoot string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, asgen.NewError("cas.Open", asgen.ErrInternal, "creating cache directory failed", err)
	}
	dbPath := filepath.Join(cacheDir, "cas.db")
	db, err := bbolt.Open(dbPath, 0o644, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, asgen.NewError("cas.Open", asgen.ErrInternal, "opening bolt database failed", err)
	}
	s := &Store{db: db, mediaRoot: mediaRoot}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, asgen.NewError("cas.Open", asgen.ErrInternal, "initializing buckets failed", err)
	}
	zlog.Debug(ctx).Str("path", dbPath).Msg("cas store opened")
	return s, nil
}

// Close releases the underlying bolt database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return asgen.NewError("cas.Close", asgen.ErrInternal, "closing bolt database failed", err)
	}
	return nil
}

// MediaRoot returns the directory the CAS writes per-gcid media under.
func (s *Store) MediaRoot() string { return s.mediaRoot }

// MediaDir returns "<mediaRoot>/<gcid>", the per-component media
// directory icons/screenshots/videos are written beneath.
func (s *Store) MediaDir(gcid string) string {
	return filepath.Join(s.mediaRoot, filepath.FromSlash(gcid))
}

func wrapBoltErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return asgen.NewError(op, asgen.ErrInternal, "bolt transaction failed", err)
}
