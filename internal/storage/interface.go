package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mcoot/gideon/internal/model"
)

// Storage defines the interface for registry persistence.
// The registry is always written as a whole document; there is no partial write.
type Storage interface {
	// LoadDocument returns model.ErrDocumentNotFound when nothing has been saved yet
	LoadDocument(ctx context.Context) (*model.Document, error)
	SaveDocument(ctx context.Context, doc *model.Document) error

	// Backup operations
	SaveBackup(ctx context.Context, doc *model.Document, at time.Time) (Backup, error)
	ListBackups(ctx context.Context) ([]Backup, error)
}

// Backup describes one stored copy of the document
type Backup struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupName returns the name for the next backup, numbered by how many exist already
func BackupName(existing int, at time.Time) string {
	return fmt.Sprintf("%d-backup_%s.json", existing, at.Format("02-January-2006"))
}
