package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store persists a Ledger.
type Store interface {
	// Load never fails: a missing or malformed document yields a fresh
	// ledger which is persisted right away.
	Load() *Ledger
	Save(l *Ledger) error
	Reset() (*Ledger, error)
}

// FileStore keeps the ledger in a single JSON file, rewritten whole on every save.
type FileStore struct {
	path        string
	initialCash decimal.Decimal
	logger      *zap.Logger
}

func NewFileStore(path string, initialCash decimal.Decimal, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, initialCash: initialCash, logger: logger}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() *Ledger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read ledger failed, starting fresh", zap.String("path", s.path), zap.Error(err))
		}
		return s.fresh()
	}

	l, err := Unmarshal(data)
	if err != nil {
		corrupt := s.path + ".corrupt"
		s.logger.Warn("malformed ledger, starting fresh",
			zap.String("path", s.path),
			zap.String("moved_to", corrupt),
			zap.Error(err))
		if rerr := os.Rename(s.path, corrupt); rerr != nil {
			s.logger.Warn("could not preserve malformed ledger", zap.Error(rerr))
		}
		return s.fresh()
	}
	return l
}

func (s *FileStore) fresh() *Ledger {
	l := New(s.initialCash)
	if err := s.Save(l); err != nil {
		s.logger.Error("persist fresh ledger", zap.String("path", s.path), zap.Error(err))
	}
	return l
}

// Save writes to a temporary file next to the target and renames it into
// place, so readers see either the old or the new document.
func (s *FileStore) Save(l *Ledger) error {
	data, err := Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func (s *FileStore) Reset() (*Ledger, error) {
	l := New(s.initialCash)
	if err := s.Save(l); err != nil {
		return nil, err
	}
	return l, nil
}

// MemoryStore keeps the encoded ledger in memory. Saves go through the same
// codec as FileStore.
type MemoryStore struct {
	mu          sync.Mutex
	data        []byte
	initialCash decimal.Decimal
	saves       int
}

func NewMemoryStore(initialCash decimal.Decimal) *MemoryStore {
	return &MemoryStore{initialCash: initialCash}
}

func (s *MemoryStore) Load() *Ledger {
	s.mu.Lock()
	data := s.data
	s.mu.Unlock()
	if data != nil {
		if l, err := Unmarshal(data); err == nil {
			return l
		}
	}
	l := New(s.initialCash)
	_ = s.Save(l)
	return l
}

func (s *MemoryStore) Save(l *Ledger) error {
	data, err := Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

func (s *MemoryStore) Reset() (*Ledger, error) {
	l := New(s.initialCash)
	if err := s.Save(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Saves reports how many times the ledger was written.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
