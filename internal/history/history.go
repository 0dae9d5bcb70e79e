package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/shared"
)

// CommandRecord is one issued transport command and its outcome.
type CommandRecord struct {
	ID        string
	Command   player.Command
	Filename  string
	Succeeded bool
	Error     string
	IssuedAt  time.Time
}

// StatusRecord is one observed status transition.
type StatusRecord struct {
	ID            string
	IsPlaying     bool
	VideoName     string
	VideoFilename string
	CurrentIndex  *int
	ObservedAt    time.Time
}

// Repository persists command and status records.
//
// Implements reconcile.Recorder; write failures are logged and swallowed so
// a broken local database never interferes with playback control.
type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

// NewRepository creates a Repository with the given database connection.
// logger defaults to stderr.
func NewRepository(db *sql.DB, logger *log.Logger) *Repository {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Repository{db: db, logger: logger}
}

// RecordCommand appends a command outcome to the log.
func (r *Repository) RecordCommand(cmd player.Command, filename string, cmdErr error) {
	errText := ""
	succeeded := true
	if cmdErr != nil {
		succeeded = false
		errText = cmdErr.Error()
	}

	query := `
		INSERT INTO command_history (id, command, filename, succeeded, error, issued_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, shared.GenerateID(), string(cmd), filename, succeeded, errText, time.Now().UTC())
	if err != nil {
		r.logger.Warn("failed to record command", "command", cmd, "error", err)
	}
}

// RecordStatus appends an observed status transition to the log.
func (r *Repository) RecordStatus(status player.Status) {
	name, filename := "", ""
	if status.CurrentVideo != nil {
		name = status.CurrentVideo.Name
		filename = status.CurrentVideo.Filename
	}

	query := `
		INSERT INTO status_history (id, is_playing, video_name, video_filename, current_index, observed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, shared.GenerateID(), status.IsPlaying, name, filename, status.CurrentIndex, time.Now().UTC())
	if err != nil {
		r.logger.Warn("failed to record status", "error", err)
	}
}

// Commands returns the most recent command records, newest first.
func (r *Repository) Commands(limit int) ([]CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, command, filename, succeeded, error, issued_at
		FROM command_history
		ORDER BY issued_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query command history: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var cmd string
		if err := rows.Scan(&rec.ID, &cmd, &rec.Filename, &rec.Succeeded, &rec.Error, &rec.IssuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan command record: %w", err)
		}
		rec.Command = player.Command(cmd)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Statuses returns the most recent status transitions, newest first.
func (r *Repository) Statuses(limit int) ([]StatusRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, is_playing, video_name, video_filename, current_index, observed_at
		FROM status_history
		ORDER BY observed_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var records []StatusRecord
	for rows.Next() {
		var rec StatusRecord
		var index sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.IsPlaying, &rec.VideoName, &rec.VideoFilename, &index, &rec.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status record: %w", err)
		}
		if index.Valid {
			i := int(index.Int64)
			rec.CurrentIndex = &i
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
