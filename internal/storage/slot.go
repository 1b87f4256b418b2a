package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/KaramelBytes/folio-cli/internal/utils"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisKey is the key holding the serialized collection.
	DefaultRedisKey = "folio:projects:v1"
)

// ErrSlotEmpty is returned by Read when nothing has been written yet.
var ErrSlotEmpty = errors.New("storage slot is empty")

// Slot is a single persisted blob.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// FileSlot keeps the blob in one file on disk.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) *FileSlot { return &FileSlot{path: path} }

// Path returns the file location.
func (s *FileSlot) Path() string { return s.path }

func (s *FileSlot) Read(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot: %w", err)
	}
	return b, nil
}

// Write replaces the file atomically.
func (s *FileSlot) Write(_ context.Context, data []byte) error {
	if err := utils.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	return utils.SafeWriteFile(s.path, data)
}

// RedisSlot keeps the blob in a single Redis string key.
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot returns a slot over key; an empty key uses DefaultRedisKey.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSlot{client: client, key: key}
}

func (s *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot %s: %w", s.key, err)
	}
	return b, nil
}

func (s *RedisSlot) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set slot %s: %w", s.key, err)
	}
	return nil
}

// MemorySlot is an in-process slot, mostly for tests.
type MemorySlot struct {
	mu     sync.Mutex
	data   []byte
	set    bool
	writes int
}

func NewMemorySlot() *MemorySlot { return &MemorySlot{} }

func (s *MemorySlot) Read(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data[:0], data...)
	s.set = true
	s.writes++
	return nil
}

// Writes reports how many times the slot was written.
func (s *MemorySlot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
