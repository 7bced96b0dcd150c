package ratesource

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Errors returned by Client. Callers compare them with errors.Is.
var (
	// ErrTransport covers network failures, non-2xx responses and responses
	// whose result field reports an error.
	ErrTransport = constError("rate source request failed")

	// ErrDecode indicates a successful response whose body lacks required fields.
	ErrDecode = constError("invalid rate source response")

	// ErrUnknownTargetCurrency indicates the snapshot has no rate for the target.
	ErrUnknownTargetCurrency = constError("unknown target currency")
)

// UnknownTargetCurrencyError names the target code missing from a snapshot.
type UnknownTargetCurrencyError struct {
	Code string
}

func (e *UnknownTargetCurrencyError) Error() string {
	return fmt.Sprintf("target currency %s not found in rates", e.Code)
}

// Is reports whether target is ErrUnknownTargetCurrency.
func (e *UnknownTargetCurrencyError) Is(target error) bool {
	return target == ErrUnknownTargetCurrency
}
