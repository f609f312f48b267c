package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
)

type globalDayRepositoryImpl struct {
	db *database.DB
}

func NewGlobalDayRepository(db *database.DB) availability.GlobalDayRepository {
	return &globalDayRepositoryImpl{db: db}
}

// Upsert implements availability.GlobalDayRepository.
func (r *globalDayRepositoryImpl) Upsert(ctx context.Context, day availability.GlobalDay) (availability.GlobalDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO global_days (date, kind, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (date) DO UPDATE SET kind = EXCLUDED.kind
		RETURNING date, kind, created_at
	`

	var (
		result availability.GlobalDay
		kind   string
	)
	if err := q.QueryRow(ctx, query, day.Date, string(day.Kind)).Scan(&result.Date, &kind, &result.CreatedAt); err != nil {
		return availability.GlobalDay{}, fmt.Errorf("failed to upsert global day: %w", err)
	}
	result.Kind = availability.GlobalDayKind(kind)

	return result, nil
}

// List implements availability.GlobalDayRepository.
func (r *globalDayRepositoryImpl) List(ctx context.Context, from, to *time.Time) ([]availability.GlobalDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT date, kind, created_at
		FROM global_days
		WHERE ($1::date IS NULL OR date >= $1)
		  AND ($2::date IS NULL OR date <= $2)
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list global days: %w", err)
	}
	defer rows.Close()

	var days []availability.GlobalDay
	for rows.Next() {
		var (
			day  availability.GlobalDay
			kind string
		)
		if err := rows.Scan(&day.Date, &kind, &day.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan global day: %w", err)
		}
		day.Kind = availability.GlobalDayKind(kind)
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return days, nil
}

// Delete implements availability.GlobalDayRepository.
func (r *globalDayRepositoryImpl) Delete(ctx context.Context, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM global_days WHERE date = $1`, date)
	if err != nil {
		return fmt.Errorf("failed to delete global day: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return availability.ErrGlobalDayNotFound
	}

	return nil
}
