package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cmstorage "github.com/chartmuseum/storage"
)

// LocalStore serves a directory tree as a bucket, backed by chartmuseum's
// local filesystem backend.
type LocalStore struct {
	backend *cmstorage.LocalFilesystemBackend
	root    string
	bucket  string
}

// NewLocalStore builds a LocalStore rooted at root. bucket is the name recorded on
// cataloged documents; it defaults to the root's base name.
func NewLocalStore(root, bucket string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("local storage root must be provided")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("local storage root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local storage root %s is not a directory", root)
	}
	if bucket == "" {
		bucket = filepath.Base(root)
	}

	return &LocalStore{
		backend: cmstorage.NewLocalFilesystemBackend(root),
		root:    root,
		bucket:  bucket,
	}, nil
}

func (s *LocalStore) Bucket() string {
	return s.bucket
}

// List returns one page of the tree. The backend has no native cursor, so the full
// listing is sorted and sliced.
func (s *LocalStore) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	seen := make(map[string]struct{})
	all := make([]ObjectInfo, 0)
	if err := s.collect(ctx, strings.Trim(opts.Prefix, "/"), seen, &all); err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })

	return Paginate(all, opts), nil
}

// collect lists the files of one directory through the backend and descends into its
// subdirectories.
func (s *LocalStore) collect(ctx context.Context, dir string, seen map[string]struct{}, out *[]ObjectInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	objects, err := s.backend.ListObjects(dir)
	if err != nil {
		return fmt.Errorf("local list failed: %w", err)
	}
	for _, object := range objects {
		key := joinKey(dir, filepath.ToSlash(object.Path))
		if _, ok := seen[key]; ok {
			continue
		}
		info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(key)))
		if err != nil {
			return fmt.Errorf("local stat %s: %w", key, err)
		}
		if info.IsDir() {
			continue
		}
		seen[key] = struct{}{}
		*out = append(*out, ObjectInfo{Key: key, Size: info.Size()})
	}

	entries, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(dir)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("local read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := s.collect(ctx, joinKey(dir, entry.Name()), seen, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinKey(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Get reads the object stored under key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.backend.GetObject(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("local get %s: %w", key, err)
	}
	return object.Content, nil
}

var _ ObjectStore = (*LocalStore)(nil)
