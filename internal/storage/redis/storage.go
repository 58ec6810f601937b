package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Document operations

func (s *Storage) LoadDocument(ctx context.Context) (*model.Document, error) {
	data, err := s.client.Get(ctx, s.documentKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.Decode(data)
}

func (s *Storage) SaveDocument(ctx context.Context, doc *model.Document) error {
	data, err := model.Encode(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.documentKey(), data, 0).Err()
}

// Backup operations

func (s *Storage) SaveBackup(ctx context.Context, doc *model.Document, at time.Time) (storage.Backup, error) {
	data, err := model.Encode(doc)
	if err != nil {
		return storage.Backup{}, err
	}

	count, err := s.client.LLen(ctx, s.backupIndexKey()).Result()
	if err != nil {
		return storage.Backup{}, err
	}

	b := storage.Backup{
		Name:      storage.BackupName(int(count), at),
		Size:      int64(len(data)),
		CreatedAt: at,
	}
	meta, err := json.Marshal(b)
	if err != nil {
		return storage.Backup{}, err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.backupKey(b.Name), data, 0)
	pipe.RPush(ctx, s.backupIndexKey(), meta)
	if _, err := pipe.Exec(ctx); err != nil {
		return storage.Backup{}, err
	}
	return b, nil
}

func (s *Storage) ListBackups(ctx context.Context) ([]storage.Backup, error) {
	entries, err := s.client.LRange(ctx, s.backupIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	backups := make([]storage.Backup, 0, len(entries))
	for _, entry := range entries {
		var b storage.Backup
		if err := json.Unmarshal([]byte(entry), &b); err != nil {
			continue // Skip invalid data
		}
		backups = append(backups, b)
	}
	return backups, nil
}
