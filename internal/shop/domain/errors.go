package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the request layer can map it to a response
// without inspecting messages.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindConflict          Kind = "conflict"
	KindInternal          Kind = "internal_error"
)

// Error message constants shared by the services.
const (
	ErrMsgCartNotFound     = "Cart does not exist"
	ErrMsgCartItemNotFound = "Cart item does not exist"
	ErrMsgProductNotFound  = "Product does not exist"
	ErrMsgOrderNotFound    = "Order does not exist"
	ErrMsgQuantityPositive = "quantity must be a positive integer"
	ErrMsgProductNameTaken = "Product name already exist"
	ErrMsgInvalidPage      = "Invalid page number"
	ErrMsgStockConflict    = "stock changed concurrently, retry checkout"
)

// Error is the structured failure returned by every shop operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// NewInsufficientStock reports that productName cannot cover the requested
// quantity.
func NewInsufficientStock(productName string) *Error {
	return &Error{Kind: KindInsufficientStock, Message: productName + " quantity is not enough"}
}

func NewConflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Wrap classifies err as internal unless it already carries a Kind.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a shop error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
