package kv

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"campus_chat/pkg/errorx"
)

const fileStoreVersion = 1

// fileDocument 磁盘上的单一文档，所有键都在同一个文件里
// 因此一次写文件即可原子提交整批键
type fileDocument struct {
	Version int               `json:"version"`
	Entries map[string][]byte `json:"entries"`
}

// FileStore 以单个 JSON 文件持久化的存储，移动端/桌面端默认后端
type FileStore struct {
	path string
	mu   sync.Mutex
	doc  *fileDocument
}

// NewFileStore 打开（或新建）path 指向的文档
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeStorageError, "create store dir for %s", path)
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FileStore) load() error {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.doc = &fileDocument{Version: fileStoreVersion, Entries: map[string][]byte{}}
		return nil
	}
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "read store %s", f.path)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "decode store %s", f.path)
	}
	if doc.Entries == nil {
		doc.Entries = map[string][]byte{}
	}
	f.doc = &doc
	return nil
}

// flushLocked 先写临时文件再 rename，避免写到一半的文档
func (f *FileStore) flushLocked(next map[string][]byte) error {
	raw, err := json.Marshal(fileDocument{Version: fileStoreVersion, Entries: next})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "encode store %s", f.path)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "write store %s", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "replace store %s", f.path)
	}
	f.doc.Entries = next
	return nil
}

// mutateLocked 在副本上修改，落盘成功后才替换内存状态
func (f *FileStore) mutateLocked(fn func(next map[string][]byte)) error {
	next := make(map[string][]byte, len(f.doc.Entries)+1)
	for k, v := range f.doc.Entries {
		next[k] = v
	}
	fn(next)
	return f.flushLocked(next)
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.doc.Entries[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return f.MultiSet(ctx, map[string][]byte{key: value})
}

func (f *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.doc.Entries[key]; !ok {
		return nil
	}
	return f.mutateLocked(func(next map[string][]byte) { delete(next, key) })
}

func (f *FileStore) MultiGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := f.doc.Entries[k]; ok {
			out[k] = clone(v)
		}
	}
	return out, nil
}

func (f *FileStore) MultiSet(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutateLocked(func(next map[string][]byte) {
		for k, v := range entries {
			next[k] = clone(v)
		}
	})
}

func (f *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
