package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/wenku/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, key, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalStoreListAndGet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "佛教经典/金刚经.txt", "如是我闻")
	writeFile(t, root, "大安法师/X/01 阿弥陀经要解 10讲/第01讲.txt", "一")
	writeFile(t, root, "大安法师/X/01 阿弥陀经要解 10讲/第02讲.txt", "二二")

	store, err := NewLocalStore(root, "wenku")
	require.NoError(t, err)
	assert.Equal(t, "wenku", store.Bucket())

	ctx := context.Background()
	var keys []string
	var pages int
	err = Walk(ctx, store, "", 2, func(page []ObjectInfo) error {
		pages++
		for _, obj := range page {
			keys = append(keys, obj.Key)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.ElementsMatch(t, []string{
		"佛教经典/金刚经.txt",
		"大安法师/X/01 阿弥陀经要解 10讲/第01讲.txt",
		"大安法师/X/01 阿弥陀经要解 10讲/第02讲.txt",
	}, keys)

	data, err := store.Get(ctx, "佛教经典/金刚经.txt")
	require.NoError(t, err)
	assert.Equal(t, "如是我闻", string(data))

	_, err = store.Get(ctx, "佛教经典/missing.txt")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestLocalStoreSizes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b.txt", "12345")

	store, err := NewLocalStore(root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), store.Bucket())

	page, err := store.List(context.Background(), ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, ObjectInfo{Key: "a/b.txt", Size: 5}, page.Objects[0])
	assert.False(t, page.Truncated)
}

func TestNewLocalStoreRejectsMissingRoot(t *testing.T) {
	_, err := NewLocalStore(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
	_, err = NewLocalStore("", "")
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	all := []ObjectInfo{{Key: "a"}, {Key: "b"}, {Key: "c"}}

	first := Paginate(all, ListOptions{Limit: 2})
	assert.Equal(t, []ObjectInfo{{Key: "a"}, {Key: "b"}}, first.Objects)
	assert.True(t, first.Truncated)
	assert.Equal(t, "b", first.Cursor)

	second := Paginate(all, ListOptions{Limit: 2, Cursor: first.Cursor})
	assert.Equal(t, []ObjectInfo{{Key: "c"}}, second.Objects)
	assert.False(t, second.Truncated)
	assert.Empty(t, second.Cursor)
}

func TestNewS3StoreValidates(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.ErrorContains(t, err, "endpoint")
	_, err = NewS3Store(S3Config{Endpoint: "x"})
	assert.ErrorContains(t, err, "credentials")
	_, err = NewS3Store(S3Config{Endpoint: "x", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")

	store, err := NewS3Store(S3Config{Endpoint: "https://acct.r2.cloudflarestorage.com", AccessKey: "a", SecretKey: "b", Bucket: "jingdianwendang"})
	require.NoError(t, err)
	assert.Equal(t, "jingdianwendang", store.Bucket())
}

func TestOpenSelectsDriver(t *testing.T) {
	root := t.TempDir()

	store, err := Open(config.StorageConfig{Driver: DriverLocal, LocalRoot: root, Bucket: "wenku"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)
	assert.Equal(t, "wenku", store.Bucket())

	_, err = Open(config.StorageConfig{Driver: DriverS3})
	assert.Error(t, err)

	_, err = Open(config.StorageConfig{Driver: "ftp"})
	assert.ErrorContains(t, err, "unknown storage driver")
}
