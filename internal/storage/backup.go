package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupInfo describes a backup file.
type BackupInfo struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Checksum string
}

// BackupDir returns the default backup directory for a database file.
func BackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// Backup writes a consistent copy of the database to dir and verifies it.
// An empty dir uses BackupDir next to the database file.
func (db *DB) Backup(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		if db.path == MemoryPath {
			return "", fmt.Errorf("backup directory is required for in-memory databases")
		}
		dir = BackupDir(db.path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	path := filepath.Join(dir, "trials_"+time.Now().UTC().Format("20060102_150405.000000000")+".db")
	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("vacuum into backup: %w", err)
	}

	if err := VerifyBackup(ctx, path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}
	return path, nil
}

// VerifyBackup checks that path is a readable trial database.
func VerifyBackup(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer conn.Close()

	var result string
	if err := conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}

	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM trial_runs").Scan(&n); err != nil {
		return fmt.Errorf("read trial runs: %w", err)
	}
	return nil
}

// ListBackups returns the .db files in dir, newest first. A missing
// directory has no backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		sum, err := checksum(path)
		if err != nil {
			sum = "unknown"
		}
		backups = append(backups, BackupInfo{
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: sum,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

func checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
