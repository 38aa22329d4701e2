package cas

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// StatRecord is one row of the stats database (spec §3 "stats").
type StatRecord struct {
	UnixSecond int64           `json:"unix_second"`
	Suite      string          `json:"suite"`
	Section    string          `json:"section"`
	Totals     map[string]int  `json:"totals"`
	Extra      json.RawMessage `json:"extra,omitempty"`
}

// AddStats appends a stat record.
//
// spec §9 flags the literal "same unix-second key, upgrade existing
// value to a JSON array" scheme as awkward and suggests storing stats
// under monotonic 64-bit counters instead (see DESIGN.md, Open
// Questions). This store takes that redesign: each call claims the
// next sequence number and writes a fresh row, so there is never a
// read-modify-upgrade step, while GetStats still groups rows by
// UnixSecond to present the contract's original map<unix-sec, json>
// shape.
func (s *Store) AddStats(ctx context.Context, rec StatRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return asgen.NewError("cas.AddStats", asgen.ErrInvalid, "marshaling stat record failed", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketStats))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
	return wrapBoltErr("cas.AddStats", err)
}

// GetStats returns every stat record, grouped by unix-second timestamp
// the way the original collision-to-array scheme would have exposed
// them, but derived from the monotonic sequence keys rather than
// stored that way.
func (s *Store) GetStats(ctx context.Context) (map[int64][]StatRecord, error) {
	out := make(map[int64][]StatRecord)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketStats)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec StatRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out[rec.UnixSecond] = append(out[rec.UnixSecond], rec)
		}
		return nil
	})
	return out, wrapBoltErr("cas.GetStats", err)
}
