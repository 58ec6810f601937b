package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Documents are held encoded so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	document   []byte
	backups    []storage.Backup
	backupData map[string][]byte
	saveErr    error
	saveCount  int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		backupData: make(map[string][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Document operations

func (s *Storage) LoadDocument(ctx context.Context) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.document == nil {
		return nil, model.ErrDocumentNotFound
	}
	return model.Decode(s.document)
}

func (s *Storage) SaveDocument(ctx context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := model.Encode(doc)
	if err != nil {
		return err
	}
	s.document = data
	s.saveCount++
	return nil
}

// Backup operations

func (s *Storage) SaveBackup(ctx context.Context, doc *model.Document, at time.Time) (storage.Backup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := model.Encode(doc)
	if err != nil {
		return storage.Backup{}, err
	}
	b := storage.Backup{
		Name:      storage.BackupName(len(s.backups), at),
		Size:      int64(len(data)),
		CreatedAt: at,
	}
	s.backups = append(s.backups, b)
	s.backupData[b.Name] = data
	return b, nil
}

func (s *Storage) ListBackups(ctx context.Context) ([]storage.Backup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]storage.Backup, len(s.backups))
	copy(result, s.backups)
	return result, nil
}

// Test helpers

// SetSaveError makes every following SaveDocument fail with err (nil restores)
func (s *Storage) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// SaveCount returns how many documents have been written successfully
func (s *Storage) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveCount
}

// Raw returns the encoded document as last written
func (s *Storage) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.document...)
}
