package cas

import (
	"context"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// MetadataWrite is one (kind, gcid) -> bytes pair to persist as part of
// AddResult.
type MetadataWrite struct {
	Kind asgen.MetadataKind
	GCID string
	Data []byte
}

// ResultWrite is everything one package's finished extraction needs
// persisted, already shaped by the caller (extractor/pipeline) from a
// result.Aggregator — the CAS package itself never depends on the
// result package, keeping the dependency direction the same as the
// Package-Contents Index (C2 depends on nothing above it).
type ResultWrite struct {
	Package  asgen.PackageID
	Status   asgen.PackageStatus // StatusIgnored, StatusSeen, or StatusGenerated
	GCIDs    []string            // only meaningful when Status == StatusGenerated
	Metadata []MetadataWrite     // rows to write only if not already present (write-once)
	Hints    []byte              // serialized HintsDocument JSON, nil if no hints
}

// AddResult persists a finished package extraction atomically: new
// metadata rows, the hints document (if any), and the packages-bucket
// row, in a single bolt transaction.
func (s *Store) AddResult(ctx context.Context, w ResultWrite) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, m := range w.Metadata {
			bucketName, ok := metadataBucket(string(m.Kind))
			if !ok {
				continue
			}
			b := tx.Bucket([]byte(bucketName))
			if b.Get([]byte(m.GCID)) != nil {
				continue // write-once: same gcid always means same bytes
			}
			if err := b.Put([]byte(m.GCID), m.Data); err != nil {
				return err
			}
		}
		if len(w.Hints) > 0 {
			if err := tx.Bucket([]byte(bucketHints)).Put([]byte(w.Package), w.Hints); err != nil {
				return err
			}
		}
		var raw []byte
		switch w.Status {
		case asgen.StatusIgnored:
			raw = []byte(statusIgnore)
		case asgen.StatusSeen:
			raw = []byte(statusSeen)
		case asgen.StatusGenerated:
			raw = []byte(joinGCIDs(w.GCIDs))
		}
		return tx.Bucket([]byte(bucketPackages)).Put([]byte(w.Package), raw)
	})
	return wrapBoltErr("cas.AddResult", err)
}

func joinGCIDs(gcids []string) string {
	out := ""
	for i, g := range gcids {
		if i > 0 {
			out += "\n"
		}
		out += g
	}
	return out
}
