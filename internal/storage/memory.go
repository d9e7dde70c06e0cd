package storage

import "sync"

// MemoryStorage はメモリ上にのみ保持するStorageの実装。
// テストおよび永続化を無効にしたい場合に使用する。
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage は空のMemoryStorageを生成する。
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get は指定キーの値を返す。
func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set は指定キーに値を保存する。
func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete は指定キーを削除する。
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// ClearAuth は認証キーをひとまとめに削除する。
func (s *MemoryStorage) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range authKeys {
		delete(s.values, key)
	}
	return nil
}
