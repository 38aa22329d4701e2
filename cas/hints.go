package cas

import (
	"context"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// PutHints stores the already-serialized HintsDocument JSON bytes for pkid.
func (s *Store) PutHints(ctx context.Context, pkid asgen.PackageID, data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketHints)).Put([]byte(pkid), data)
	})
	return wrapBoltErr("cas.PutHints", err)
}

// GetHints returns the raw JSON bytes stored for pkid, or nil.
func (s *Store) GetHints(ctx context.Context, pkid asgen.PackageID) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(bucketHints)).Get([]byte(pkid)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, wrapBoltErr("cas.GetHints", err)
}

// HasHints reports whether pkid has a hints row at all.
func (s *Store) HasHints(ctx context.Context, pkid asgen.PackageID) (bool, error) {
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(bucketHints)).Get([]byte(pkid)) != nil
		return nil
	})
	return found, wrapBoltErr("cas.HasHints", err)
}
