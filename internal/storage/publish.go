package storage

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
)

// Publish uploads every regular file below dir to dst, keyed by its
// slash-separated path relative to dir. It returns the number of files written.
func Publish(ctx context.Context, dst *Storage, dir string) (int, error) {
	if err := dst.EnsureBucket(ctx); err != nil {
		return 0, err
	}

	count := 0
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}
		file, err := os.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()

		if err := dst.Put(ctx, key, file, info.Size(), mime.TypeByExtension(path.Ext(key))); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
