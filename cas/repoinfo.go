package cas

import (
	"context"
	"encoding/json"

	"go.etcd.io/bbolt"
)

// RepoInfo is the stored state of one (suite, section, arch) repository
// coordinate (spec §3 "repo_info").
type RepoInfo struct {
	MTime int64 `json:"mtime"`
}

func repoInfoKey(suite, section, arch string) []byte {
	return []byte(suite + "/" + section + "/" + arch)
}

// GetRepoInfo returns the stored RepoInfo for (suite, section, arch),
// and false if there's no row yet.
func (s *Store) GetRepoInfo(ctx context.Context, suite, section, arch string) (RepoInfo, bool, error) {
	var info RepoInfo
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketRepoInfo)).Get(repoInfoKey(suite, section, arch))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &info)
	})
	return info, found, wrapBoltErr("cas.GetRepoInfo", err)
}

// SetRepoInfo writes the RepoInfo for (suite, section, arch). A suite's
// row is written whenever its Packages index is read (spec §3
// "Lifecycle").
func (s *Store) SetRepoInfo(ctx context.Context, suite, section, arch string, info RepoInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketRepoInfo)).Put(repoInfoKey(suite, section, arch), data)
	})
	return wrapBoltErr("cas.SetRepoInfo", err)
}

// RemoveRepoInfo deletes the stored row for (suite, section, arch).
func (s *Store) RemoveRepoInfo(ctx context.Context, suite, section, arch string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketRepoInfo)).Delete(repoInfoKey(suite, section, arch))
	})
	return wrapBoltErr("cas.RemoveRepoInfo", err)
}
