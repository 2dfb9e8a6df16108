// Package store declares the persistence capabilities the USSD resolver
// consumes. Implementations live in the sub-packages.
package store

import (
	"context"

	"pocket-ussd/model"
)

// SessionStore keeps one row per gateway session id.
type SessionStore interface {
	// GetSession returns nil and no error when the session is unknown.
	GetSession(ctx context.Context, sessionId string) (*model.USSDSession, error)
	UpsertSession(ctx context.Context, session model.USSDSession) error
}

// LedgerStore keeps the running balance per phone number and the
// append-only transaction log.
type LedgerStore interface {
	// GetBalance returns 0 for a phone number with no balance row.
	GetBalance(ctx context.Context, phoneNumber string) (float64, error)
	AddBalance(ctx context.Context, phoneNumber string, amount float64) error
	// DebitBalance subtracts amount only when the balance covers it and
	// reports whether it did.
	DebitBalance(ctx context.Context, phoneNumber string, amount float64) (bool, error)
	LogTransaction(ctx context.Context, tx model.Transaction) error
}
