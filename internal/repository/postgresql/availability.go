package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type recordRepositoryImpl struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) availability.RecordRepository {
	return &recordRepositoryImpl{db: db}
}

// Create implements availability.RecordRepository.
func (r *recordRepositoryImpl) Create(ctx context.Context, record availability.Record) (availability.Record, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return availability.Record{}, fmt.Errorf("failed to generate availability id: %w", err)
	}

	query := `
		INSERT INTO availabilities (id, worker, date, kind, portion, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, worker, date, kind, portion, created_at
	`

	result, err := scanRecord(q.QueryRow(ctx, query,
		id.String(), record.Worker, record.Date, string(record.Kind), string(record.Portion),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return availability.Record{}, availability.ErrDuplicateRecord
		}
		return availability.Record{}, fmt.Errorf("failed to create availability: %w", err)
	}

	return result, nil
}

// GetByID implements availability.RecordRepository.
func (r *recordRepositoryImpl) GetByID(ctx context.Context, id string) (availability.Record, error) {
	if !isUUID(id) {
		return availability.Record{}, availability.ErrRecordNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, worker, date, kind, portion, created_at
		FROM availabilities
		WHERE id = $1
	`

	result, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return availability.Record{}, availability.ErrRecordNotFound
		}
		return availability.Record{}, fmt.Errorf("failed to get availability: %w", err)
	}

	return result, nil
}

// List implements availability.RecordRepository.
func (r *recordRepositoryImpl) List(ctx context.Context, filter availability.RecordFilter) ([]availability.Record, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []any
	)
	if filter.Worker != nil {
		args = append(args, *filter.Worker)
		where = append(where, fmt.Sprintf("worker = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT id, worker, date, kind, portion, created_at FROM availabilities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, worker ASC, id ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list availabilities: %w", err)
	}
	defer rows.Close()

	var records []availability.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// Delete implements availability.RecordRepository.
func (r *recordRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return availability.ErrRecordNotFound
	}
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return availability.ErrRecordNotFound
	}

	return nil
}

func scanRecord(row pgx.Row) (availability.Record, error) {
	var (
		rec     availability.Record
		kind    string
		portion string
	)
	if err := row.Scan(&rec.ID, &rec.Worker, &rec.Date, &kind, &portion, &rec.CreatedAt); err != nil {
		return availability.Record{}, err
	}
	rec.Kind = availability.AbsenceKind(kind)
	rec.Portion = availability.Portion(portion)
	return rec, nil
}
