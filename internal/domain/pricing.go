package domain

// VariantPricing is the catalogue's current view of a purchasable variant.
// Read-only from this subsystem's perspective.
type VariantPricing struct {
	VariantID       string
	BasePrice       int64
	PriceAdjustment int64
	InventoryCount  int
	IsMadeToOrder   bool
}

// UnitPrice is the authoritative per-unit price for the variant.
func (v VariantPricing) UnitPrice() int64 {
	return v.BasePrice + v.PriceAdjustment
}

// LineRequest is a (variant, quantity) pair to be priced.
type LineRequest struct {
	VariantID string
	Quantity  int
}

// PricedLine is a line request resolved against the live catalogue.
type PricedLine struct {
	VariantID   string
	Quantity    int
	UnitPrice   int64
	LineTotal   int64
	MadeToOrder bool
}

// Quote is the authoritative pricing of a cart at a point in time. Unlinked
// holds requests whose variant no longer resolves; they contribute nothing to
// Subtotal and are skipped when order lines are written.
type Quote struct {
	Lines       []PricedLine
	Unlinked    []LineRequest
	Subtotal    int64
	ShippingFee int64
	Total       int64
}
