package ledger

import (
	"context"
	"time"

	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
	"github.com/shopspring/decimal"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

const insertTradeQuery = `INSERT INTO trades (id, bid_owner, ask_owner, bid_order_id, ask_order_id, price, quantity, taker_side, created_at) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)`

type tradeRepository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewTradeRepository creates a new trade repository.
func NewTradeRepository(db postgresql.PostgreSQLClient, log logger.Interface) *tradeRepository {
	return &tradeRepository{
		db:     db,
		logger: log,
	}
}

// Insert appends a trade.
func (r *tradeRepository) Insert(ctx context.Context, trade *orderv1.Trade) error {
	_, err := r.db.Exec(ctx, insertTradeQuery,
		trade.ID,
		trade.BidOwner,
		trade.AskOwner,
		trade.BidOrderID,
		trade.AskOrderID,
		trade.Price.StringFixed(2),
		trade.Quantity,
		string(trade.TakerSide),
		trade.CreatedAt,
	)
	if err != nil {
		return wrapError(err)
	}

	r.logger.DebugContext(ctx, "inserted trade", logger.NewField("trade_id", trade.ID))
	return nil
}

// Since lists trades created at or after since, newest first.
func (r *tradeRepository) Since(ctx context.Context, since time.Time) ([]*orderv1.Trade, error) {
	query, args := sinceQuery(since)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	trades := make([]*orderv1.Trade, 0)
	for rows.Next() {
		var (
			trade     orderv1.Trade
			price     string
			takerSide string
		)
		if err := rows.Scan(
			&trade.ID,
			&trade.BidOwner,
			&trade.AskOwner,
			&trade.BidOrderID,
			&trade.AskOrderID,
			&price,
			&trade.Quantity,
			&takerSide,
			&trade.CreatedAt,
		); err != nil {
			return nil, wrapError(err)
		}

		trade.TakerSide = orderv1.Side(takerSide)
		if trade.Price, err = decimal.NewFromString(price); err != nil {
			return nil, wrapError(err)
		}
		trades = append(trades, &trade)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	return trades, nil
}

func sinceQuery(since time.Time) (string, []any) {
	return postgresql.NewQueryBuilder().
		Select(
			"id",
			"bid_owner",
			"ask_owner",
			"bid_order_id",
			"ask_order_id",
			"price::text",
			"quantity",
			"taker_side",
			"created_at",
		).
		From("trades").
		Where("created_at >= ?", since).
		OrderBy("created_at", true).
		OrderBy("id", true).
		Build()
}
