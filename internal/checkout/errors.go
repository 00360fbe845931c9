package checkout

import "errors"

var (
	ErrEmptyCart       = errors.New("cart is empty, nothing to checkout")
	ErrInvalidShipping = errors.New("shipping form is incomplete or invalid")
	ErrNothingPriced   = errors.New("no cart line resolves against the catalogue")
)

// Failure codes returned to the transport layer. Customers only ever see
// "order placed" or "please try again"; the codes let the handler pick a
// status without leaking internals.
const (
	CodeEmptyCart       = "empty_cart"
	CodeInvalidShipping = "invalid_shipping"
	CodeNothingPriced   = "stale_cart"
	CodeWriteFailed     = "order_write_failed"
	CodeInternal        = "internal_error"
)
