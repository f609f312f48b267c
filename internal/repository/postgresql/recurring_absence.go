package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guccio85/proximasuite-sub000/internal/domain/availability"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type recurringRuleRepositoryImpl struct {
	db *database.DB
}

func NewRecurringRuleRepository(db *database.DB) availability.RecurringRuleRepository {
	return &recurringRuleRepositoryImpl{db: db}
}

const recurringColumns = `id, worker, kind, portion, day_of_week, start_date, number_of_weeks, note, created_at`

// Create implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) Create(ctx context.Context, rule availability.RecurringRule) (availability.RecurringRule, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return availability.RecurringRule{}, fmt.Errorf("failed to generate recurring absence id: %w", err)
	}

	query := `
		INSERT INTO recurring_absences (id, worker, kind, portion, day_of_week, start_date, number_of_weeks, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING ` + recurringColumns

	result, err := scanRule(q.QueryRow(ctx, query,
		id.String(),
		rule.Worker,
		string(rule.Kind),
		string(rule.Portion),
		int(rule.AnchorDay),
		rule.StartDate,
		rule.OccurrenceWeeks,
		rule.Note,
	))
	if err != nil {
		return availability.RecurringRule{}, fmt.Errorf("failed to create recurring absence: %w", err)
	}

	return result, nil
}

// GetByID implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) GetByID(ctx context.Context, id string) (availability.RecurringRule, error) {
	if !isUUID(id) {
		return availability.RecurringRule{}, availability.ErrRecurringRuleNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recurringColumns + ` FROM recurring_absences WHERE id = $1`

	result, err := scanRule(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return availability.RecurringRule{}, availability.ErrRecurringRuleNotFound
		}
		return availability.RecurringRule{}, fmt.Errorf("failed to get recurring absence: %w", err)
	}

	return result, nil
}

// List implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) List(ctx context.Context, worker *string) ([]availability.RecurringRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_absences
		WHERE ($1::text IS NULL OR worker = $1)
		ORDER BY worker ASC, start_date ASC, id ASC
	`

	rows, err := q.Query(ctx, query, worker)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring absences: %w", err)
	}
	defer rows.Close()

	var rules []availability.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring absence: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return rules, nil
}

// Delete implements availability.RecurringRuleRepository.
func (r *recurringRuleRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return availability.ErrRecurringRuleNotFound
	}
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM recurring_absences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring absence: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return availability.ErrRecurringRuleNotFound
	}

	return nil
}

func scanRule(row pgx.Row) (availability.RecurringRule, error) {
	var (
		rule      availability.RecurringRule
		kind      string
		portion   string
		dayOfWeek int
	)
	err := row.Scan(
		&rule.ID,
		&rule.Worker,
		&kind,
		&portion,
		&dayOfWeek,
		&rule.StartDate,
		&rule.OccurrenceWeeks,
		&rule.Note,
		&rule.CreatedAt,
	)
	if err != nil {
		return availability.RecurringRule{}, err
	}
	rule.Kind = availability.AbsenceKind(kind)
	rule.Portion = availability.Portion(portion)
	rule.AnchorDay = time.Weekday(dayOfWeek)
	return rule, nil
}
