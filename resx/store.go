package resx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

// keyPattern is the identifier rule for resource keys: a letter or
// underscore followed by letters, digits, or underscores. Keys that fail
// this pattern would not compile as members of the generated accessor class.
var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidKey reports whether key satisfies the resource key identifier rule.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Store performs durable reads and writes of single .resx files.
//
// A Store owns the on-disk content only for the duration of one AddEntry
// call; it holds no open handles between calls. Mutations never overwrite
// an existing key and never edit or remove entries — the only supported
// change is appending a new one.
type Store struct {
	log zerolog.Logger

	// writeFn persists marshaled bytes at a path. Replaced in tests to
	// simulate write failures after a successful backup.
	writeFn func(path string, data []byte) error
}

// NewStore returns a Store logging through the given logger.
func NewStore(log zerolog.Logger) *Store {
	s := &Store{log: log}
	s.writeFn = s.write
	return s
}

// Read returns the key → value mapping of the file at path. Any failure
// (missing file, malformed XML) yields an empty mapping, never an error:
// callers treat an unreadable file as "no known keys".
func (s *Store) Read(path string) map[string]string {
	doc, err := ParseFile(path)
	if err != nil {
		return map[string]string{}
	}
	return doc.Values()
}

// KeyExists reports whether the file at path contains key (case-insensitive).
func (s *Store) KeyExists(path, key string) bool {
	doc, err := ParseFile(path)
	if err != nil {
		return false
	}
	return doc.Has(key)
}

// AddEntry appends a new entry to the file at path and persists it by
// rewriting the whole file. It returns true only after a completed write.
//
// It returns false without touching the file when the key fails the
// identifier rule or is already present (case-insensitive). A missing or
// unparseable file is replaced by a fresh skeleton carrying the standard
// resheaders plus the one new entry.
//
// Before the rewrite, the current file (when one exists) is copied to a
// sibling <path>.backup_<timestamp>; if the write fails, the backup is
// restored best-effort. Backups are left on disk and never cleaned up here.
func (s *Store) AddEntry(path, key, value, comment string) bool {
	if !ValidKey(key) {
		s.log.Warn().Str("key", key).Msg("rejected key: not a valid identifier")
		return false
	}

	doc, err := ParseFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Str("path", path).Err(err).Msg("unparseable resource file, starting fresh skeleton")
		}
		doc = NewDocument()
	}

	if !doc.Add(key, value, comment) {
		s.log.Debug().Str("path", path).Str("key", key).Msg("key already present, refusing overwrite")
		return false
	}

	backup, err := s.backup(path)
	if err != nil {
		s.log.Error().Str("path", path).Err(err).Msg("backup failed, aborting write")
		return false
	}

	if err := s.writeFn(path, doc.Marshal()); err != nil {
		s.log.Error().Str("path", path).Err(err).Msg("write failed")
		if backup != "" {
			s.restore(backup, path)
		}
		return false
	}
	return true
}

// backup copies the current file content to <path>.backup_<timestamp>.
// Returns "" when the file does not exist yet (nothing to back up).
func (s *Store) backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	backup := fmt.Sprintf("%s.backup_%s", path, time.Now().Format("20060102150405"))
	if err := os.WriteFile(backup, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", backup, err)
	}
	return backup, nil
}

// restore copies backup content back over path. Best effort: a failure is
// logged and swallowed, the backup file itself stays on disk either way.
func (s *Store) restore(backup, path string) {
	data, err := os.ReadFile(backup)
	if err != nil {
		s.log.Error().Str("backup", backup).Err(err).Msg("restore failed: cannot read backup")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.log.Error().Str("backup", backup).Err(err).Msg("restore failed: cannot write original")
		return
	}
	s.log.Info().Str("path", path).Str("backup", backup).Msg("restored from backup")
}

// write persists data at path via a temp file and rename on the same
// volume, so a crash mid-write cannot leave a truncated file behind.
func (s *Store) write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", tmpName, err)
	}
	return nil
}
