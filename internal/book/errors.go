package book

import "errors"

// All book errors are recoverable: the call that raised one has
// performed no mutation, so the caller may reject the request upstream
// and carry on.
var (
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrUnknownOrderID   = errors.New("unknown order id")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidQuantity  = errors.New("invalid quantity")
)
