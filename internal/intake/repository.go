package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medintake/internal/models"
)

// ErrSessionNotFound is returned when no session exists for the given id.
var ErrSessionNotFound = errors.New("session not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `SELECT id, patient_id, history, record, handover_reported, created_at, updated_at FROM sessions WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	var s models.Session
	var historyJSON, recordJSON []byte

	err := row.Scan(
		&s.ID,
		&s.PatientID,
		&historyJSON,
		&recordJSON,
		&s.HandoverReported,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &s.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}
	if len(recordJSON) > 0 {
		if err := json.Unmarshal(recordJSON, &s.Record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
	}

	return &s, nil
}

func (r *postgresRepo) Save(ctx context.Context, s *models.Session) error {
	historyJSON, err := json.Marshal(s.History)
	if err != nil {
		return err
	}
	recordJSON, err := json.Marshal(s.Record)
	if err != nil {
		return err
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()

	query := `
		INSERT INTO sessions (id, patient_id, history, record, handover_reported, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			history = $3,
			record = $4,
			handover_reported = $5,
			updated_at = $7
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.PatientID, historyJSON, recordJSON, s.HandoverReported, s.CreatedAt, s.UpdatedAt)
	return err
}
