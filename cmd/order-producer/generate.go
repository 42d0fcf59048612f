package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/Satyam-Vyas/order-book/internal/domain/order-consumer/v1"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/pkg/idgen"
)

// generator produces limit orders scattered around a base price. Bids sit
// mostly below it and asks mostly above, so roughly a fifth of the orders cross.
type generator struct {
	rnd    *rand.Rand
	ids    *idgen.Generator
	users  int
	base   decimal.Decimal
	spread decimal.Decimal
	maxQty int64
}

func (g *generator) next(now time.Time) v1.PlaceOrderEvent {
	side := orderv1.SideBid
	if g.rnd.IntN(2) == 0 {
		side = orderv1.SideAsk
	}

	// offset in [-0.2, 0.8) of the spread, away from the base on the passive side.
	offset := g.spread.Mul(decimal.NewFromFloat(g.rnd.Float64() - 0.2))
	price := g.base.Add(offset)
	if side == orderv1.SideBid {
		price = g.base.Sub(offset)
	}
	price = price.Round(2)
	if !price.IsPositive() {
		price = g.base
	}

	return v1.PlaceOrderEvent{
		EventID:   g.ids.NewID(),
		Timestamp: now,
		UserID:    fmt.Sprintf("user-%03d", g.rnd.IntN(g.users)+1),
		OrderType: string(side),
		Price:     price,
		Quantity:  g.rnd.Int64N(g.maxQty) + 1,
	}
}
