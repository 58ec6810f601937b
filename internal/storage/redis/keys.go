package redis

import "fmt"

// documentKey returns the Redis key holding the encoded registry document
func (s *Storage) documentKey() string {
	return fmt.Sprintf("%s:document", s.cfg.KeyPrefix)
}

// backupKey returns the Redis key for one backup copy
func (s *Storage) backupKey(name string) string {
	return fmt.Sprintf("%s:backup:%s", s.cfg.KeyPrefix, name)
}

// backupIndexKey returns the Redis key for the LIST of backup descriptors, oldest first
func (s *Storage) backupIndexKey() string {
	return fmt.Sprintf("%s:idx:backups", s.cfg.KeyPrefix)
}
