package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ma-crm/crm-go/internal/infrastructure/redis"
)

// Storage persists the session across application restarts. A Load on an
// empty backend returns (nil, nil).
type Storage interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

type MemoryStorage struct {
	mu      sync.RWMutex
	session *Session
}

type FileStorage struct {
	mu   sync.Mutex
	path string
}

type RedisStorage struct {
	redisService *redis.Service
	key          string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	session := *m.session
	return &session, nil
}

func (m *MemoryStorage) Save(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.session = &copied
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load() (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	session := new(Session)
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return session, nil
}

func (f *FileStorage) Save(session *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session directory: %w", err)
		}
	}
	// Tokens are credentials; keep the file private to the owner.
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (f *FileStorage) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func NewRedisStorage(redisService *redis.Service, key string) *RedisStorage {
	return &RedisStorage{redisService: redisService, key: key}
}

func (r *RedisStorage) Load() (*Session, error) {
	data, err := r.redisService.Get(context.Background(), r.key)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}

	session := new(Session)
	if err := json.Unmarshal([]byte(data), session); err != nil {
		return nil, fmt.Errorf("decode stored session: %w", err)
	}
	return session, nil
}

func (r *RedisStorage) Save(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.redisService.Set(context.Background(), r.key, string(data), 0)
}

func (r *RedisStorage) Clear() error {
	return r.redisService.Delete(context.Background(), r.key)
}
