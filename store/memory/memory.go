// Package memory keeps sessions and the ledger in process memory. It backs
// the "memory" store driver for local runs and the resolver tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pocket-ussd/model"
)

type Store struct {
	mu           sync.Mutex
	sessions     map[string]model.USSDSession
	balances     map[string]float64
	transactions []model.Transaction
}

func New() *Store {
	return &Store{
		sessions: map[string]model.USSDSession{},
		balances: map[string]float64{},
	}
}

func (s *Store) GetSession(ctx context.Context, sessionId string) (*model.USSDSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionId]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *Store) UpsertSession(ctx context.Context, session model.USSDSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = time.Now()
	s.sessions[session.Id] = session
	return nil
}

func (s *Store) GetBalance(ctx context.Context, phoneNumber string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[phoneNumber], nil
}

func (s *Store) AddBalance(ctx context.Context, phoneNumber string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[phoneNumber] += amount
	return nil
}

func (s *Store) DebitBalance(ctx context.Context, phoneNumber string, amount float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[phoneNumber] < amount {
		return false, nil
	}
	s.balances[phoneNumber] -= amount
	return true, nil
}

func (s *Store) LogTransaction(ctx context.Context, tx model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.Reference == "" {
		tx.Reference = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

// Transactions returns the logged transactions for phoneNumber, oldest first.
func (s *Store) Transactions(phoneNumber string) []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.PhoneNumber == phoneNumber {
			out = append(out, tx)
		}
	}
	return out
}
