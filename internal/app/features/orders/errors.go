package orders

import "errors"

// Service errors. Handlers map them to HTTP responses in failure.
var (
	ErrNoActiveCart      = errors.New("no active order found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidAddress    = errors.New("address not found in your address book")
	ErrNegativeTotal     = errors.New("total must not be negative")
	ErrTotalMismatch     = errors.New("total does not match the cart")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrOrderNotFound     = errors.New("order not found")
	ErrStatusConflict    = errors.New("order status changed, please retry")
	ErrSecondCart        = errors.New("user already has an active cart")
)
