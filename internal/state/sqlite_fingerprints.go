package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetFingerprint retrieves the stored input fingerprint for a configuration
// directory. Returns the empty string when none has been recorded.
func (s *SQLiteStore) GetFingerprint(configDir string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	var fingerprint string
	err := s.db.QueryRow(
		`SELECT fingerprint FROM fingerprints WHERE config_dir = ?`, configDir,
	).Scan(&fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get fingerprint: %w", err)
	}
	return fingerprint, nil
}

// SetFingerprint stores the input fingerprint for a configuration directory.
func (s *SQLiteStore) SetFingerprint(configDir, fingerprint string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO fingerprints (config_dir, fingerprint, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(config_dir) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
		configDir, fingerprint, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set fingerprint: %w", err)
	}
	return nil
}
