package domain

import (
	"errors"
	"fmt"
)

// Code identifies a failure the caller can act on. The values are part of
// the API contract and appear verbatim in HTTP responses.
type Code string

const (
	CodeCartNotFound      Code = "Cart.NotFound"
	CodeCartItemNotFound  Code = "CartItem.NotFound"
	CodeProductNotFound   Code = "Product.NotFound"
	CodeStockInsufficient Code = "Cart.StockWarning"
	CodeCartEmpty         Code = "Cart.Empty"
	CodeCheckoutFailed    Code = "Checkout.Failed"
)

// Error is a tagged failure. Services return it for every documented
// failure mode; anything else crossing the service boundary is an
// infrastructure error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the failure code from an error chain.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given failure code.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
