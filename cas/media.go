package cas

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ximion/appstream-generator-sub002"
)

// EnsureMediaDir creates "<mediaRoot>/<gcid>/<sub>" and returns its
// path, e.g. sub = "icons/64x64".
func (s *Store) EnsureMediaDir(gcid, sub string) (string, error) {
	dir := filepath.Join(s.MediaDir(gcid), filepath.FromSlash(sub))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", asgen.NewError("cas.EnsureMediaDir", asgen.ErrInternal, "creating media directory failed", err)
	}
	return dir, nil
}

// MediaExists reports whether the given file under a component's media
// directory already exists. The icon resolver uses this to make
// rasterization idempotent across reruns (spec §4.5 "Duplication").
func (s *Store) MediaExists(gcid, relPath string) bool {
	_, err := os.Stat(filepath.Join(s.MediaDir(gcid), filepath.FromSlash(relPath)))
	return err == nil
}

// gcidDepth is the number of path segments a gcid always has:
// <prefix1>/<prefix2>/<leaf>/<hex>.
const gcidDepth = 4

// walkGCIDDirs visits every leaf (depth-gcidDepth) directory under the
// media root and calls fn with its slash-joined path relative to the
// root (i.e. the gcid it represents).
func (s *Store) walkGCIDDirs(fn func(gcid string) error) error {
	root := s.mediaRoot
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if path == root || !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		depth := len(strings.Split(filepath.ToSlash(rel), "/"))
		switch {
		case depth < gcidDepth:
			return nil
		case depth == gcidDepth:
			if err := fn(filepath.ToSlash(rel)); err != nil {
				return err
			}
			return fs.SkipDir
		default:
			return fs.SkipDir
		}
	})
}

// removeMediaDirAndEmptyParents deletes the media directory for gcid
// and then removes its two parent directories if they're left empty
// (spec §4.1 gc_cruft: "removing empty parents up two levels").
func removeMediaDirAndEmptyParents(root, gcid string) error {
	dir := filepath.Join(root, filepath.FromSlash(gcid))
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	parent := filepath.Dir(dir)
	for i := 0; i < 2; i++ {
		if parent == root || parent == "." || parent == string(filepath.Separator) {
			break
		}
		entries, err := os.ReadDir(parent)
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			return err
		}
		if len(entries) != 0 {
			break
		}
		if err := os.Remove(parent); err != nil {
			return err
		}
		parent = filepath.Dir(parent)
	}
	return nil
}
