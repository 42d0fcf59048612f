package tradeeventv1

import "context"

// TradePublisher delivers trade events downstream.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=tradeeventv1_mock
type TradePublisher interface {
	// PublishTrades writes every event or fails as a whole.
	PublishTrades(ctx context.Context, events ...*TradeEvent) error
}
