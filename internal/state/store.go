// Package state persists run history and input fingerprints using SQLite.
package state

import "time"

// RunStatus describes the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusSkipped   RunStatus = "skipped"
)

// Run is one recorded analysis invocation.
type Run struct {
	ID          string
	Label       string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Store is the persistence contract consumed by the runner and the CLI.
type Store interface {
	Migrate() error
	CreateRun(label string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	GetLatestRun() (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	GetFingerprint(configDir string) (string, error)
	SetFingerprint(configDir, fingerprint string) error
	Close() error
}
