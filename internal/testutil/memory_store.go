package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/andresuchdata/wenku/backend-go/internal/storage"
)

// MemoryStore is an in-memory storage.ObjectStore. Keys registered with FailGet
// return an error on read; keys registered with Vanish are listed but missing on
// read.
type MemoryStore struct {
	mu       sync.Mutex
	bucket   string
	objects  map[string][]byte
	failing  map[string]error
	vanished map[string]bool
	listErr  error
	gets     int
	lists    int
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:   bucket,
		objects:  make(map[string][]byte),
		failing:  make(map[string]error),
		vanished: make(map[string]bool),
	}
}

func (m *MemoryStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

func (m *MemoryStore) PutString(key, data string) {
	m.Put(key, []byte(data))
}

// FailGet makes reads of key fail with err. A nil err clears the failure.
func (m *MemoryStore) FailGet(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failing, key)
		return
	}
	m.failing[key] = err
}

func (m *MemoryStore) Vanish(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vanished[key] = true
}

func (m *MemoryStore) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// Gets reports how many reads reached the store.
func (m *MemoryStore) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// Lists reports how many listing pages were requested.
func (m *MemoryStore) Lists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

func (m *MemoryStore) Bucket() string {
	return m.bucket
}

func (m *MemoryStore) List(_ context.Context, opts storage.ListOptions) (*storage.ListPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}

	all := make([]storage.ObjectInfo, 0, len(m.objects))
	for key, data := range m.objects {
		if strings.HasPrefix(key, opts.Prefix) {
			all = append(all, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })

	return storage.Paginate(all, opts), nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if err, ok := m.failing[key]; ok {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok || m.vanished[key] {
		return nil, storage.ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

var _ storage.ObjectStore = (*MemoryStore)(nil)
