package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/storage"
)

// Storage keeps the registry as a JSON file on disk, with backups in a directory
type Storage struct {
	path      string
	backupDir string
}

// New creates a file storage. backupDir defaults to "backups" next to the document.
func New(path, backupDir string) *Storage {
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(path), "backups")
	}
	return &Storage{
		path:      path,
		backupDir: backupDir,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Path returns the document path
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) LoadDocument(ctx context.Context) (*model.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.Decode(data)
}

// SaveDocument writes to a temporary file and renames it over the document,
// so a reader never observes a partially written file.
func (s *Storage) SaveDocument(ctx context.Context, doc *model.Document) error {
	data, err := model.Encode(doc)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}

func (s *Storage) SaveBackup(ctx context.Context, doc *model.Document, at time.Time) (storage.Backup, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return storage.Backup{}, fmt.Errorf("create backup dir: %w", err)
	}
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return storage.Backup{}, err
	}
	data, err := model.Encode(doc)
	if err != nil {
		return storage.Backup{}, err
	}
	name := storage.BackupName(len(entries), at)
	if err := writeAtomic(filepath.Join(s.backupDir, name), data); err != nil {
		return storage.Backup{}, err
	}
	return storage.Backup{
		Name:      name,
		Size:      int64(len(data)),
		CreatedAt: at,
	}, nil
}

func (s *Storage) ListBackups(ctx context.Context) ([]storage.Backup, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []storage.Backup{}, nil
		}
		return nil, err
	}
	backups := make([]storage.Backup, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		backups = append(backups, storage.Backup{
			Name:      e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].CreatedAt.Before(backups[j].CreatedAt)
	})
	return backups, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
