// Package conversion converts amounts between supported currencies using
// rates from a RateProvider.
package conversion

import (
	"context"
	"fmt"

	"github.com/curtools/cur/internal/currency"
	"github.com/curtools/cur/internal/format"
	"github.com/curtools/cur/internal/logging"
)

// RateProvider returns how many units of target one unit of base buys.
type RateProvider interface {
	GetRate(ctx context.Context, base, target currency.Currency) (float64, error)
}

// Result is one completed conversion.
type Result struct {
	BaseAmount     float64
	BaseCurrency   currency.Currency
	TargetAmount   float64
	TargetCurrency currency.Currency
	Rate           float64
}

func (r Result) String() string {
	return fmt.Sprintf("%s %s = %s %s (rate %s)",
		format.WithCommas(r.BaseAmount), r.BaseCurrency,
		format.WithCommas(r.TargetAmount), r.TargetCurrency,
		format.Rate(r.Rate))
}

// Service performs conversions.
type Service struct {
	rates RateProvider
}

// NewService creates a Service backed by rates.
func NewService(rates RateProvider) *Service {
	return &Service{rates: rates}
}

// Convert converts amount of base into target.
func (s *Service) Convert(ctx context.Context, amount float64, base, target currency.Currency) (*Result, error) {
	rate, err := s.rates.GetRate(ctx, base, target)
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s rate: %w", base, target, err)
	}

	result := &Result{
		BaseAmount:     amount,
		BaseCurrency:   base,
		TargetAmount:   amount * rate,
		TargetCurrency: target,
		Rate:           rate,
	}

	logging.FromContext(ctx).Debug().
		Str("component", "conversion").
		Str("result", result.String()).
		Msg("converted")
	return result, nil
}
