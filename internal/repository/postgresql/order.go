package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/guccio85/proximasuite-sub000/internal/domain/order"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type orderRepositoryImpl struct {
	db *database.DB
}

func NewOrderRepository(db *database.DB) order.OrderRepository {
	return &orderRepositoryImpl{db: db}
}

const orderColumns = `
	id, order_number, client, project_ref, address, description,
	scheduled_date, scheduled_end_date,
	is_subcontracted, subcontractor_name, subcontractor_delivery_date,
	missing_assignment, created_at, updated_at
`

// Create implements order.OrderRepository.
func (r *orderRepositoryImpl) Create(ctx context.Context, o order.Order) (order.Order, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to generate order id: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, order_number, client, project_ref, address, description,
			scheduled_date, scheduled_end_date,
			is_subcontracted, subcontractor_name, subcontractor_delivery_date,
			missing_assignment, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		id.String(),
		o.OrderNumber,
		o.Client,
		o.ProjectRef,
		o.Address,
		o.Description,
		o.ScheduledDate,
		o.ScheduledEndDate,
		o.IsSubcontracted,
		o.SubcontractorName,
		o.SubcontractorDeliveryDate,
		o.MissingAssignment,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return order.Order{}, order.ErrOrderNumberExists
		}
		return order.Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	o.ID = id.String()

	if err := r.insertTasks(ctx, q, o); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// GetByID implements order.OrderRepository.
func (r *orderRepositoryImpl) GetByID(ctx context.Context, id string) (order.Order, error) {
	if !isUUID(id) {
		return order.Order{}, order.ErrOrderNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrOrderNotFound
		}
		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []order.Order{o}
	if err := r.attachTasks(ctx, q, orders); err != nil {
		return order.Order{}, err
	}

	return orders[0], nil
}

// List implements order.OrderRepository.
func (r *orderRepositoryImpl) List(ctx context.Context, filter order.OrderFilter) ([]order.Order, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []any
	)
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		where = append(where, fmt.Sprintf("(order_number ILIKE $%d OR client ILIKE $%d)", len(args), len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("COALESCE(scheduled_end_date, scheduled_date) >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("scheduled_date <= $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY order_number ASC"

	return r.queryOrders(ctx, q, query, args...)
}

// ListByWorker implements order.OrderRepository.
func (r *orderRepositoryImpl) ListByWorker(ctx context.Context, worker string) ([]order.Order, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id IN (SELECT order_id FROM order_tasks WHERE $1 = ANY(crew))
		ORDER BY order_number ASC
	`

	return r.queryOrders(ctx, q, query, worker)
}

// Update implements order.OrderRepository.
func (r *orderRepositoryImpl) Update(ctx context.Context, o order.Order) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE orders
		SET order_number = $1,
			client = $2,
			project_ref = $3,
			address = $4,
			description = $5,
			scheduled_date = $6,
			scheduled_end_date = $7,
			is_subcontracted = $8,
			subcontractor_name = $9,
			subcontractor_delivery_date = $10,
			missing_assignment = $11,
			updated_at = NOW()
		WHERE id = $12
	`

	commandTag, err := q.Exec(ctx, query,
		o.OrderNumber,
		o.Client,
		o.ProjectRef,
		o.Address,
		o.Description,
		o.ScheduledDate,
		o.ScheduledEndDate,
		o.IsSubcontracted,
		o.SubcontractorName,
		o.SubcontractorDeliveryDate,
		o.MissingAssignment,
		o.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrOrderNumberExists
		}
		return fmt.Errorf("failed to update order: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}

	if _, err := q.Exec(ctx, `DELETE FROM order_tasks WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("failed to clear order tasks: %w", err)
	}

	return r.insertTasks(ctx, q, o)
}

// Delete implements order.OrderRepository.
func (r *orderRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return order.ErrOrderNotFound
	}
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

func (r *orderRepositoryImpl) insertTasks(ctx context.Context, q database.Querier, o order.Order) error {
	query := `
		INSERT INTO order_tasks (order_id, kind, position, start_date, end_date, budget_hours, crew)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, t := range o.Tasks {
		crew := []string(t.Crew)
		if crew == nil {
			crew = []string{}
		}
		if _, err := q.Exec(ctx, query, o.ID, string(t.Kind), i, t.StartDate, t.EndDate, t.BudgetHours, crew); err != nil {
			return fmt.Errorf("failed to insert %s task: %w", t.Kind, err)
		}
	}
	return nil
}

func (r *orderRepositoryImpl) queryOrders(ctx context.Context, q database.Querier, query string, args ...any) ([]order.Order, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if err := r.attachTasks(ctx, q, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachTasks loads the tasks for all orders in one query.
func (r *orderRepositoryImpl) attachTasks(ctx context.Context, q database.Querier, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = i
	}

	query := `
		SELECT order_id, kind, start_date, end_date, budget_hours, crew
		FROM order_tasks
		WHERE order_id = ANY($1)
		ORDER BY order_id, position ASC
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			kind    string
			t       order.Task
			crew    []string
		)
		if err := rows.Scan(&orderID, &kind, &t.StartDate, &t.EndDate, &t.BudgetHours, &crew); err != nil {
			return fmt.Errorf("failed to scan order task: %w", err)
		}
		t.Kind = order.TaskKind(kind)
		t.Crew = order.NewCrew(crew...)

		i := byID[orderID]
		orders[i].Tasks = append(orders[i].Tasks, t)
	}

	return rows.Err()
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.Client,
		&o.ProjectRef,
		&o.Address,
		&o.Description,
		&o.ScheduledDate,
		&o.ScheduledEndDate,
		&o.IsSubcontracted,
		&o.SubcontractorName,
		&o.SubcontractorDeliveryDate,
		&o.MissingAssignment,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isUUID guards id lookups; a malformed id cannot match any row and would
// otherwise surface as a cast error.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
