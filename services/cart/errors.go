package cart

import (
	"errors"

	"github.com/MarcGrol/shopcart/lib/myerrors"
)

var (
	ErrFetchFailed   = errors.New("fetch failed")
	ErrOutOfStock    = errors.New("out of stock")
	ErrNotFound      = errors.New("item not in cart")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrStorageFailed = errors.New("storage failed")
)

const (
	msgAddFailed     = "failed to add item"
	msgRemoveFailed  = "failed to remove item"
	msgUpdateFailed  = "failed to update item amount"
	msgOutOfStock    = "requested quantity not in stock"
	msgItemAdded     = "item added to cart"
	msgItemRemoved   = "item removed from cart"
	msgAmountUpdated = "item amount updated"
)

// operationError pairs the user facing message with its kind and the underlying cause
type operationError struct {
	message string
	kind    error
	cause   error
}

func (e *operationError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *operationError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func fetchFailed(message string, cause error) error {
	return myerrors.NewBadGatewayError(&operationError{message: message, kind: ErrFetchFailed, cause: cause})
}

func outOfStock() error {
	return myerrors.NewConflictError(&operationError{message: msgOutOfStock, kind: ErrOutOfStock})
}

func notFound(message string) error {
	return myerrors.NewNotFoundError(&operationError{message: message, kind: ErrNotFound})
}

func invalidAmount(message string) error {
	return myerrors.NewInvalidInputError(&operationError{message: message, kind: ErrInvalidAmount})
}

func storageFailed(message string, cause error) error {
	return myerrors.NewInternalError(&operationError{message: message, kind: ErrStorageFailed, cause: cause})
}

// Message returns the notification text carried by err
func Message(err error) string {
	var opErr *operationError
	if errors.As(err, &opErr) {
		return opErr.message
	}
	return err.Error()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrStorageFailed):
		return "storage_failed"
	default:
		return "error"
	}
}
