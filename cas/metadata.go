package cas

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/ximion/appstream-generator-sub002"
)

// HasMetadata reports whether a metadata row exists for (kind, gcid).
func (s *Store) HasMetadata(ctx context.Context, kind asgen.MetadataKind, gcid string) (bool, error) {
	bucket, ok := metadataBucket(string(kind))
	if !ok {
		return false, fmt.Errorf("cas: unknown metadata kind %q", kind)
	}
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(bucket)).Get([]byte(gcid)) != nil
		return nil
	})
	return found, wrapBoltErr("cas.HasMetadata", err)
}

// GetMetadata returns the serialized bytes for (kind, gcid), or nil if
// there is no such row.
func (s *Store) GetMetadata(ctx context.Context, kind asgen.MetadataKind, gcid string) ([]byte, error) {
	bucket, ok := metadataBucket(string(kind))
	if !ok {
		return nil, fmt.Errorf("cas: unknown metadata kind %q", kind)
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(bucket)).Get([]byte(gcid)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, wrapBoltErr("cas.GetMetadata", err)
}

// PutMetadata writes the serialized bytes for (kind, gcid). Per spec
// §8 invariant 3, repeated writes under the same gcid must always
// carry identical bytes; callers are expected to check HasMetadata
// first to preserve write-once semantics, but PutMetadata itself does
// not enforce that (it would require comparing the whole payload on
// every write, which the caller can do more cheaply with its own
// content hash).
func (s *Store) PutMetadata(ctx context.Context, kind asgen.MetadataKind, gcid string, data []byte) error {
	bucket, ok := metadataBucket(string(kind))
	if !ok {
		return fmt.Errorf("cas: unknown metadata kind %q", kind)
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(gcid), data)
	})
	return wrapBoltErr("cas.PutMetadata", err)
}
