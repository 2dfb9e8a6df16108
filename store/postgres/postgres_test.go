package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket-ussd/model"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int:
			*p = r.values[i].(int)
		case *float64:
			*p = r.values[i].(float64)
		}
	}
	return nil
}

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	row   fakeRow
	tag   string
	err   error
	execs []execCall
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag(f.tag), f.err
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.row
}

func TestGetSessionMissing(t *testing.T) {
	s := New(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})
	session, err := s.GetSession(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestGetSessionError(t *testing.T) {
	s := New(&fakeDB{row: fakeRow{err: errors.New("conn reset")}})
	_, err := s.GetSession(context.Background(), "s1")
	assert.ErrorContains(t, err, "get session")
}

func TestGetBalance(t *testing.T) {
	s := New(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})
	balance, err := s.GetBalance(context.Background(), "250788")
	require.NoError(t, err)
	assert.Zero(t, balance)

	s = New(&fakeDB{row: fakeRow{values: []any{42.5}}})
	balance, err = s.GetBalance(context.Background(), "250788")
	require.NoError(t, err)
	assert.Equal(t, 42.5, balance)
}

func TestDebitBalance(t *testing.T) {
	db := &fakeDB{tag: "UPDATE 1"}
	ok, err := New(db).DebitBalance(context.Background(), "250788", 10)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "amount >= $2")

	ok, err = New(&fakeDB{tag: "UPDATE 0"}).DebitBalance(context.Background(), "250788", 10)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = New(&fakeDB{err: errors.New("down")}).DebitBalance(context.Background(), "250788", 10)
	assert.Error(t, err)
}

func TestLogTransactionAssignsReference(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 1"}
	err := New(db).LogTransaction(context.Background(), model.Transaction{
		PhoneNumber: "250788",
		Service:     "Pay bills",
		SubService:  "Water",
		Status:      model.TransactionProcessed,
	})
	require.NoError(t, err)
	require.Len(t, db.execs, 1)
	assert.Len(t, db.execs[0].args[0].(string), 36)
	assert.Equal(t, "Processed", db.execs[0].args[5])
}

func TestUpsertSession(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 1"}
	err := New(db).UpsertSession(context.Background(), model.USSDSession{Id: "s1", PhoneNumber: "250788", LastInput: "1*n", Language: "1", Page: 1})
	require.NoError(t, err)
	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0].sql, "on conflict (session_id)"))
	assert.Equal(t, []any{"s1", "250788", "1*n", "1", 1}, db.execs[0].args)
}
