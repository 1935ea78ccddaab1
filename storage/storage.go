package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound  = errors.New("result not found")
	ErrInvalidID = errors.New("invalid result id")
)

const ext = ".png"

// LocalStore 把处理结果按 ksuid 命名保存在本地目录
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// Save 写入 PNG 数据，返回结果 ID
func (s *LocalStore) Save(data []byte) (string, error) {
	id := ksuid.New().String()
	if err := os.WriteFile(filepath.Join(s.dir, id+ext), data, 0o644); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return id, nil
}

// Path 返回结果文件路径，ID 必须是合法的 ksuid
func (s *LocalStore) Path(id string) (string, error) {
	if _, err := ksuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	path := filepath.Join(s.dir, id+ext)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return path, nil
}

// Exists 结果文件是否还在（可能已被清理）
func (s *LocalStore) Exists(id string) bool {
	_, err := s.Path(id)
	return err == nil
}

// Sweep 删除修改时间早于 now-retention 的结果文件，返回删除数量
func (s *LocalStore) Sweep(now time.Time, retention time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read output dir: %w", err)
	}

	deadline := now.Add(-retention)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info.ModTime().After(deadline) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
