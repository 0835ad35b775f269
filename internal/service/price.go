package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrPriceNotFound = errors.New("price not found")

// PriceProvider returns the latest market price of a holding code.
type PriceProvider interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error)
}

// PriceFunc adapts a plain lookup function to PriceProvider.
type PriceFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

func (f PriceFunc) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	p, err := f(ctx, symbol)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return p, time.Now().UTC(), nil
}

// StaticPrices serves prices from a fixed table.
type StaticPrices map[string]decimal.Decimal

func (s StaticPrices) GetPrice(_ context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	p, ok := s[symbol]
	if !ok {
		return decimal.Zero, time.Time{}, ErrPriceNotFound
	}
	return p, time.Time{}, nil
}
