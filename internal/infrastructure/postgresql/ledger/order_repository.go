package ledger

import (
	"context"
	"fmt"

	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
	"github.com/shopspring/decimal"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

var orderColumns = []string{
	"id",
	"owner",
	"side",
	"price::text",
	"quantity",
	"original_quantity",
	"active",
	"created_at",
	"seq",
}

type orderRepository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db postgresql.PostgreSQLClient, log logger.Interface) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: log,
	}
}

// Insert stores order and records the sequence PostgreSQL assigned to it.
// The owner gets a users row on first sight.
func (r *orderRepository) Insert(ctx context.Context, order *orderv1.Order) error {
	if _, err := r.db.Exec(ctx, upsertUserQuery, order.Owner); err != nil {
		return wrapError(err)
	}

	err := r.db.QueryRow(ctx, insertOrderQuery,
		order.ID,
		order.Owner,
		string(order.Side),
		order.PriceString(),
		order.Quantity,
		order.OriginalQuantity,
		order.Active,
		order.CreatedAt,
	).Scan(&order.Sequence)
	if err != nil {
		return wrapError(err)
	}

	r.logger.DebugContext(ctx, "inserted order",
		logger.NewField("order_id", order.ID),
		logger.NewField("seq", order.Sequence),
	)
	return nil
}

// LockEligible selects the crossing counter-side orders of other owners in
// priority order and locks each row until the transaction ends.
func (r *orderRepository) LockEligible(ctx context.Context, incoming *orderv1.Order) ([]*orderv1.Order, error) {
	query, args := eligibleQuery(incoming)
	return r.list(ctx, query, args...)
}

// Update persists the remaining quantity and the active flag.
func (r *orderRepository) Update(ctx context.Context, order *orderv1.Order) error {
	cmd, err := r.db.Exec(ctx, updateOrderQuery, order.Quantity, order.Active, order.ID)
	if err != nil {
		return wrapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return wrapError(fmt.Errorf("order %s not found", order.ID))
	}
	return nil
}

// ActiveBySide lists the active orders on side, best priority first.
func (r *orderRepository) ActiveBySide(ctx context.Context, side orderv1.Side) ([]*orderv1.Order, error) {
	query, args := activeBySideQuery(side)
	return r.list(ctx, query, args...)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*orderv1.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	orders := make([]*orderv1.Order, 0)
	for rows.Next() {
		var (
			order orderv1.Order
			side  string
			price string
		)
		if err := rows.Scan(
			&order.ID,
			&order.Owner,
			&side,
			&price,
			&order.Quantity,
			&order.OriginalQuantity,
			&order.Active,
			&order.CreatedAt,
			&order.Sequence,
		); err != nil {
			return nil, wrapError(err)
		}

		order.Side = orderv1.Side(side)
		if order.Price, err = decimal.NewFromString(price); err != nil {
			return nil, wrapError(err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	return orders, nil
}

const (
	upsertUserQuery  = `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	insertOrderQuery = `INSERT INTO orders (id, owner, side, price, quantity, original_quantity, active, created_at) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8) RETURNING seq`
	updateOrderQuery = `UPDATE orders SET quantity = $1, active = $2 WHERE id = $3`
)

// eligibleQuery builds the locking scan for incoming. The ORDER BY matches
// the side's priority so rows are locked in the order they will be walked.
func eligibleQuery(incoming *orderv1.Order) (string, []any) {
	counter := incoming.Side.Opposite()

	qb := postgresql.NewQueryBuilder().
		Select(orderColumns...).
		From("orders").
		Where("side = ?", string(counter)).
		Where("active").
		Where("owner <> ?", incoming.Owner)

	if incoming.IsBid() {
		qb = qb.Where("price <= ?::numeric", incoming.PriceString())
	} else {
		qb = qb.Where("price >= ?::numeric", incoming.PriceString())
	}

	return orderByPriority(qb, counter).ForUpdate().Build()
}

func activeBySideQuery(side orderv1.Side) (string, []any) {
	qb := postgresql.NewQueryBuilder().
		Select(orderColumns...).
		From("orders").
		Where("side = ?", string(side)).
		Where("active")

	return orderByPriority(qb, side).Build()
}

func orderByPriority(qb postgresql.QueryBuilder, side orderv1.Side) postgresql.QueryBuilder {
	return qb.
		OrderBy("price", side == orderv1.SideBid).
		OrderBy("created_at").
		OrderBy("seq")
}
