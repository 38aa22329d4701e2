package cas

import (
	"context"

	"github.com/quay/zlog"
	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// GCCruft derives the live gcid set from the packages bucket, removes
// every metadata row (both kinds) whose gcid isn't live in one
// transaction, then walks the media tree deleting any leaf directory
// whose gcid isn't live (spec §4.1 "gc_cruft").
//
// Media writes aren't transactional with the KV store, so this is
// eventually consistent by design: a crash between the KV pass and the
// media walk just leaves some extra media directories to be swept on
// the next GCCruft call. Both passes are pure deletions of things not
// in the live set, so running GCCruft twice in a row with no
// intervening writes is a no-op the second time (spec §8 invariant 2).
func (s *Store) GCCruft(ctx context.Context) error {
	live, err := s.liveGCIDSet(ctx)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		for _, bucketName := range []string{bucketMetadataXML, bucketMetadataYAML} {
			b := tx.Bucket([]byte(bucketName))
			var toDelete [][]byte
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if _, ok := live[string(k)]; !ok {
					kk := make([]byte, len(k))
					copy(kk, k)
					toDelete = append(toDelete, kk)
				}
			}
			for _, k := range toDelete {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return wrapBoltErr("cas.GCCruft", err)
	}

	var removed int
	walkErr := s.walkGCIDDirs(func(gcid string) error {
		if _, ok := live[gcid]; ok {
			return nil
		}
		removed++
		return removeMediaDirAndEmptyParents(s.mediaRoot, gcid)
	})
	if walkErr != nil {
		return asgen.NewError("cas.GCCruft", asgen.ErrInternal, "sweeping media tree failed", walkErr)
	}
	zlog.Debug(ctx).Int("media_dirs_removed", removed).Msg("cruft gc complete")
	return nil
}

func (s *Store) liveGCIDSet(ctx context.Context) (map[string]struct{}, error) {
	live := make(map[string]struct{})
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketPackages)).Cursor()
		for _, v := c.First(); v != nil; _, v = c.Next() {
			rec := decodePackageRecord(v)
			for _, g := range rec.GCIDs {
				live[g] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapBoltErr("cas.liveGCIDSet", err)
	}
	return live, nil
}
