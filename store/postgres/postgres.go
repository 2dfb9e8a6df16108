// Package postgres implements the session and ledger stores on a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pocket-ussd/model"
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db Querier
}

func New(db Querier) *Store {
	return &Store{db: db}
}

func (s *Store) GetSession(ctx context.Context, sessionId string) (*model.USSDSession, error) {
	session := model.USSDSession{}
	err := s.db.QueryRow(ctx, `select session_id, phone_number, last_input, language, page, updated_at
		from ussd_sessions where session_id = $1`, sessionId).
		Scan(&session.Id, &session.PhoneNumber, &session.LastInput, &session.Language, &session.Page, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (s *Store) UpsertSession(ctx context.Context, session model.USSDSession) error {
	_, err := s.db.Exec(ctx, `insert into ussd_sessions (session_id, phone_number, last_input, language, page)
		values ($1, $2, $3, $4, $5)
		on conflict (session_id) do update set phone_number = excluded.phone_number, last_input = excluded.last_input,
			language = excluded.language, page = excluded.page, updated_at = CURRENT_TIMESTAMP`,
		session.Id, session.PhoneNumber, session.LastInput, session.Language, session.Page)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *Store) GetBalance(ctx context.Context, phoneNumber string) (float64, error) {
	var amount float64
	err := s.db.QueryRow(ctx, `select amount from balances where phone_number = $1`, phoneNumber).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return amount, nil
}

func (s *Store) AddBalance(ctx context.Context, phoneNumber string, amount float64) error {
	_, err := s.db.Exec(ctx, `insert into balances (phone_number, amount) values ($1, $2)
		on conflict (phone_number) do update set amount = balances.amount + excluded.amount, updated_at = CURRENT_TIMESTAMP`,
		phoneNumber, amount)
	if err != nil {
		return fmt.Errorf("add balance: %w", err)
	}
	return nil
}

// DebitBalance checks and subtracts in one conditional update, so two
// concurrent debits cannot both spend the same funds.
func (s *Store) DebitBalance(ctx context.Context, phoneNumber string, amount float64) (bool, error) {
	tag, err := s.db.Exec(ctx, `update balances set amount = amount - $2, updated_at = CURRENT_TIMESTAMP
		where phone_number = $1 and amount >= $2`, phoneNumber, amount)
	if err != nil {
		return false, fmt.Errorf("debit balance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) LogTransaction(ctx context.Context, tx model.Transaction) error {
	if tx.Reference == "" {
		tx.Reference = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `insert into transactions (id, phone_number, service, sub_service, amount, status)
		values ($1, $2, $3, $4, $5, $6)`,
		tx.Reference, tx.PhoneNumber, tx.Service, tx.SubService, tx.Amount, string(tx.Status))
	if err != nil {
		return fmt.Errorf("log transaction: %w", err)
	}
	return nil
}
