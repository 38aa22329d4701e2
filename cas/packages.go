package cas

import (
	"context"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

const (
	statusIgnore = "ignore"
	statusSeen   = "seen"
)

// PackageExists reports whether pkid has any record in the packages
// bucket at all.
func (s *Store) PackageExists(ctx context.Context, pkid asgen.PackageID) (bool, error) {
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketPackages)).Get([]byte(pkid))
		found = v != nil
		return nil
	})
	return found, wrapBoltErr("cas.PackageExists", err)
}

// GetPackage decodes the stored record for pkid, or StatusUnknown if
// there is none.
func (s *Store) GetPackage(ctx context.Context, pkid asgen.PackageID) (asgen.PackageRecord, error) {
	var rec asgen.PackageRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketPackages)).Get([]byte(pkid))
		if v == nil {
			rec.Status = asgen.StatusUnknown
			return nil
		}
		rec = decodePackageRecord(v)
		return nil
	})
	return rec, wrapBoltErr("cas.GetPackage", err)
}

func decodePackageRecord(v []byte) asgen.PackageRecord {
	s := string(v)
	switch s {
	case statusIgnore:
		return asgen.PackageRecord{Status: asgen.StatusIgnored}
	case statusSeen:
		return asgen.PackageRecord{Status: asgen.StatusSeen}
	default:
		var gcids []string
		for _, line := range strings.Split(s, "\n") {
			if line != "" {
				gcids = append(gcids, line)
			}
		}
		return asgen.PackageRecord{Status: asgen.StatusGenerated, GCIDs: gcids}
	}
}

// PutPackageIgnore records pkid as producing zero usable components
// (spec §8 invariant 5: "A pkid with only error-hints finalizes to
// 'ignore' status, not 'seen'").
func (s *Store) PutPackageIgnore(ctx context.Context, pkid asgen.PackageID) error {
	return s.putPackageRaw(pkid, []byte(statusIgnore))
}

// PutPackageSeen records pkid as processed with no gcids claimed.
func (s *Store) PutPackageSeen(ctx context.Context, pkid asgen.PackageID) error {
	return s.putPackageRaw(pkid, []byte(statusSeen))
}

// PutPackageGCIDs records the list of gcids pkid produced.
func (s *Store) PutPackageGCIDs(ctx context.Context, pkid asgen.PackageID, gcids []string) error {
	return s.putPackageRaw(pkid, []byte(strings.Join(gcids, "\n")))
}

func (s *Store) putPackageRaw(pkid asgen.PackageID, v []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketPackages)).Put([]byte(pkid), v)
	})
	return wrapBoltErr("cas.putPackage", err)
}

// RemovePackage deletes pkid's packages-bucket row. It does not touch
// metadata: gcid cruft is only ever collected by GCCruft (spec §4.1
// "remove only when the package leaves the repository set").
func (s *Store) RemovePackage(ctx context.Context, pkid asgen.PackageID) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketPackages)).Delete([]byte(pkid))
	})
	return wrapBoltErr("cas.RemovePackage", err)
}

// RemovePackagesNotIn deletes every packages-bucket row whose pkid is
// not in keep, scoped to one suite by the caller pre-filtering keep to
// that suite's live pkid set (spec §4.7 step 7).
func (s *Store) RemovePackagesNotIn(ctx context.Context, keep map[asgen.PackageID]struct{}) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPackages))
		var toDelete [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if _, ok := keep[asgen.PackageID(k)]; !ok {
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
		return nil
	})
	return wrapBoltErr("cas.RemovePackagesNotIn", err)
}

// LivePkids returns every pkid currently recorded in the packages
// bucket. GCCruft does not use it: it derives the live gcid set
// directly from the bucket's values via liveGCIDSet.
func (s *Store) LivePkids(ctx context.Context) ([]asgen.PackageID, error) {
	var out []asgen.PackageID
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketPackages)).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			out = append(out, asgen.PackageID(k))
		}
		return nil
	})
	return out, wrapBoltErr("cas.LivePkids", err)
}
