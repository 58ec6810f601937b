package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/storage"
)

// documentID is the primary key of the single current-document row
const documentID = 1

// documentRecord holds the encoded registry document
type documentRecord struct {
	ID      uint `gorm:"primaryKey"`
	Data    []byte
	SavedAt time.Time
}

func (documentRecord) TableName() string { return "documents" }

// backupRecord holds one backup copy
type backupRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	Data      []byte
	Size      int64
	CreatedAt time.Time
}

func (backupRecord) TableName() string { return "backups" }

// Storage keeps the registry document in a SQLite database through GORM
type Storage struct {
	db *gorm.DB
}

// New opens (creating if needed) the database at path.
// An empty path uses a private in-memory database, useful for testing.
func New(path string) (*Storage, error) {
	dsn := "file::memory:"
	if path != "" {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		// every pooled connection to file::memory: would see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&documentRecord{}, &backupRecord{}); err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying database
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Document operations

func (s *Storage) LoadDocument(ctx context.Context) (*model.Document, error) {
	var rec documentRecord
	err := s.db.WithContext(ctx).First(&rec, documentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.Decode(rec.Data)
}

func (s *Storage) SaveDocument(ctx context.Context, doc *model.Document) error {
	data, err := model.Encode(doc)
	if err != nil {
		return err
	}
	rec := documentRecord{
		ID:      documentID,
		Data:    data,
		SavedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Save(&rec).Error
}

// Backup operations

func (s *Storage) SaveBackup(ctx context.Context, doc *model.Document, at time.Time) (storage.Backup, error) {
	data, err := model.Encode(doc)
	if err != nil {
		return storage.Backup{}, err
	}

	var b storage.Backup
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&backupRecord{}).Count(&count).Error; err != nil {
			return err
		}
		rec := backupRecord{
			Name:      storage.BackupName(int(count), at),
			Data:      data,
			Size:      int64(len(data)),
			CreatedAt: at,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		b = storage.Backup{Name: rec.Name, Size: rec.Size, CreatedAt: rec.CreatedAt}
		return nil
	})
	if err != nil {
		return storage.Backup{}, err
	}
	return b, nil
}

func (s *Storage) ListBackups(ctx context.Context) ([]storage.Backup, error) {
	var recs []backupRecord
	err := s.db.WithContext(ctx).
		Select("name", "size", "created_at").
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	backups := make([]storage.Backup, 0, len(recs))
	for _, rec := range recs {
		backups = append(backups, storage.Backup{
			Name:      rec.Name,
			Size:      rec.Size,
			CreatedAt: rec.CreatedAt,
		})
	}
	return backups, nil
}
