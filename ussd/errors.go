package ussd

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidLanguage     = errors.New("invalid language")
	ErrInvalidSelection    = errors.New("invalid selection")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// messageIDs maps an error kind to its localized message.
var messageIDs = map[error]string{
	ErrInvalidRequest:      "invalid_request",
	ErrInvalidSelection:    "invalid_selection",
	ErrInvalidAmount:       "invalid_amount",
	ErrInsufficientBalance: "insufficient_balance",
	ErrStoreUnavailable:    "system_error",
}

// Kind returns the short name used for logs and metrics, "" for nil.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrInvalidLanguage):
		return "invalid_language"
	case errors.Is(err, ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "unknown"
}

func messageID(err error) string {
	for kind, id := range messageIDs {
		if errors.Is(err, kind) {
			return id
		}
	}
	return "system_error"
}
