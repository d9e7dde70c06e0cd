package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage はJSONファイルを使ったStorageの実装。
// 全キーを1ファイルに保持し、変更のたびに一時ファイルへの書き出しと
// renameによるアトミックな置き換えを行う。
type FileStorage struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileStorage は指定パスのファイルを読み込んでFileStorageを生成する。
// ファイルが存在しない場合は空の状態から開始する。
// 親ディレクトリは必要に応じて作成される。
func NewFileStorage(path string) (*FileStorage, error) {
	s := &FileStorage{
		path:   path,
		values: make(map[string]string),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ストレージディレクトリの作成に失敗: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("ストレージファイルの読み込みに失敗: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			// 壊れたファイルは空として扱い、次回保存で上書きする
			s.values = make(map[string]string)
		}
	}

	return s, nil
}

// Get は指定キーの値を返す。
func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set は指定キーに値を保存し、ファイルに書き出す。
func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

// Delete は指定キーを削除し、ファイルに書き出す。
func (s *FileStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// ClearAuth は認証キーをひとまとめに削除し、1回の書き出しで反映する。
func (s *FileStorage) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range authKeys {
		delete(s.values, key)
	}
	return s.flushLocked()
}

// flushLocked は現在の状態をアトミックにファイルへ書き出す。
// 呼び出し側でロックを保持していること。
func (s *FileStorage) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("ストレージのシリアライズに失敗: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("一時ファイルの書き込みに失敗: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("ストレージファイルの置き換えに失敗: %w", err)
	}
	return nil
}
