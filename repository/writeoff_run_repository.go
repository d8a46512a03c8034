package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"egais-writeoff/db"
	"egais-writeoff/models"
)

// WriteoffRunRepository handles database operations for write-off runs
type WriteoffRunRepository struct{}

// NewWriteoffRunRepository creates a new WriteoffRunRepository
func NewWriteoffRunRepository() *WriteoffRunRepository {
	return &WriteoffRunRepository{}
}

// Ensure WriteoffRunRepository implements WriteoffRunRepositoryInterface
var _ WriteoffRunRepositoryInterface = (*WriteoffRunRepository)(nil)

// Insert stores the run and fills CreatedAt from the database
func (r *WriteoffRunRepository) Insert(ctx context.Context, run *models.WriteoffRun) error {
	log.Printf("📝 Insert: Storing write-off run id=%s status=%s", run.ID, run.Status)

	query := `
		INSERT INTO writeoff_runs (
			id, product_type, period_start, period_end, status, reason,
			goods_total, unmatched_total, file_name, drive_file_id, chat_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	var createdAt time.Time
	err := db.DB.QueryRowContext(ctx, query,
		run.ID,
		run.ProductType,
		run.PeriodStart,
		run.PeriodEnd,
		run.Status,
		nullString(run.Reason),
		run.GoodsTotal,
		run.UnmatchedTotal,
		nullString(run.FileName),
		nullString(run.DriveFileID),
		nullInt64(run.ChatID),
	).Scan(&createdAt)
	if err != nil {
		log.Printf("❌ Insert: Error storing run id=%s: %v", run.ID, err)
		return fmt.Errorf("failed to insert write-off run: %w", err)
	}

	run.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return nil
}

// ListRecent returns up to limit runs, newest first
func (r *WriteoffRunRepository) ListRecent(ctx context.Context, limit int) ([]models.WriteoffRun, error) {
	query := `
		SELECT id, product_type, period_start, period_end, status, reason,
			goods_total, unmatched_total, file_name, drive_file_id, chat_id, created_at
		FROM writeoff_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := db.DB.QueryContext(ctx, query, limit)
	if err != nil {
		log.Printf("❌ ListRecent: Error querying runs: %v", err)
		return nil, fmt.Errorf("failed to query write-off runs: %w", err)
	}
	defer rows.Close()

	runs := make([]models.WriteoffRun, 0, limit)
	for rows.Next() {
		var (
			run                               models.WriteoffRun
			periodStart, periodEnd, createdAt time.Time
			reason, fileName, driveFileID     sql.NullString
			chatID                            sql.NullInt64
		)
		if err := rows.Scan(
			&run.ID,
			&run.ProductType,
			&periodStart,
			&periodEnd,
			&run.Status,
			&reason,
			&run.GoodsTotal,
			&run.UnmatchedTotal,
			&fileName,
			&driveFileID,
			&chatID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan write-off run: %w", err)
		}

		run.PeriodStart = periodStart.Format(time.RFC3339)
		run.PeriodEnd = periodEnd.Format(time.RFC3339)
		run.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		run.Reason = reason.String
		run.FileName = fileName.String
		run.DriveFileID = driveFileID.String
		run.ChatID = chatID.Int64
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating write-off runs: %w", err)
	}

	return runs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
