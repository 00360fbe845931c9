package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/yashgautam99/jewellry/internal/catalog"
	"github.com/yashgautam99/jewellry/internal/domain"
)

const (
	DefaultFreeShippingThreshold = 5000
	DefaultFlatShippingFee       = 200
)

type Config struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// Resolver computes authoritative totals from current catalogue state.
// Client-sent prices never enter here. It reads and computes only; no
// inventory is reserved.
type Resolver struct {
	variants catalog.VariantReader
	breaker  *gobreaker.CircuitBreaker[[]domain.VariantPricing]
	cfg      Config
}

func NewResolver(variants catalog.VariantReader, cfg Config) *Resolver {
	if cfg.FreeShippingThreshold <= 0 {
		cfg.FreeShippingThreshold = DefaultFreeShippingThreshold
	}
	if cfg.FlatShippingFee <= 0 {
		cfg.FlatShippingFee = DefaultFlatShippingFee
	}

	breaker := gobreaker.NewCircuitBreaker[[]domain.VariantPricing](gobreaker.Settings{
		Name:    "catalog",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Resolver{
		variants: variants,
		breaker:  breaker,
		cfg:      cfg,
	}
}

// Quote prices the requested lines against the live catalogue. Requests whose
// variant id no longer resolves land in Quote.Unlinked: they contribute
// nothing to the subtotal and do not fail the quote.
func (r *Resolver) Quote(ctx context.Context, requests []domain.LineRequest) (*domain.Quote, error) {
	ids := make([]string, 0, len(requests))
	seen := make(map[string]struct{}, len(requests))
	for _, req := range requests {
		if _, ok := seen[req.VariantID]; ok {
			continue
		}
		seen[req.VariantID] = struct{}{}
		ids = append(ids, req.VariantID)
	}

	variants, err := r.breaker.Execute(func() ([]domain.VariantPricing, error) {
		return r.variants.GetVariantPricing(ctx, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch variant pricing: %w", err)
	}

	byID := make(map[string]domain.VariantPricing, len(variants))
	for _, v := range variants {
		byID[v.VariantID] = v
	}

	quote := &domain.Quote{}
	for _, req := range requests {
		variant, ok := byID[req.VariantID]
		if !ok {
			quote.Unlinked = append(quote.Unlinked, req)
			continue
		}

		unit := variant.UnitPrice()
		line := domain.PricedLine{
			VariantID:   req.VariantID,
			Quantity:    req.Quantity,
			UnitPrice:   unit,
			LineTotal:   unit * int64(req.Quantity),
			MadeToOrder: variant.IsMadeToOrder,
		}
		quote.Lines = append(quote.Lines, line)
		quote.Subtotal += line.LineTotal
	}

	if quote.Subtotal < r.cfg.FreeShippingThreshold {
		quote.ShippingFee = r.cfg.FlatShippingFee
	}
	quote.Total = quote.Subtotal + quote.ShippingFee

	return quote, nil
}
