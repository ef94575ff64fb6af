package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staypoint/STP-ReservationService/pkg/dbmetrics"
)

// fakeTx транзакция с настраиваемым результатом Commit
type fakeTx struct {
	commitErr error
	committed bool
	rolledBak bool
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rolledBak = true
	return nil
}

// fakeDB выдает заранее подготовленные транзакции, считая попытки BeginTx
type fakeDB struct {
	txs      []*fakeTx
	attempts int
}

func (db *fakeDB) BeginTx(_ context.Context, _ *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	if db.attempts >= len(db.txs) {
		return nil, errors.New("no more transactions")
	}
	tx := db.txs[db.attempts]
	db.attempts++
	return tx, nil
}

func serializationErr() *pq.Error {
	return &pq.Error{Code: serializationFailure}
}

func TestDoSerializable_RetriesOnCommitConflict(t *testing.T) {
	db := &fakeDB{txs: []*fakeTx{
		{commitErr: serializationErr()},
		{commitErr: serializationErr()},
		{},
	}}
	m := NewTransactionManager(db)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, db.attempts)
	assert.True(t, db.txs[2].committed)
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	db := &fakeDB{txs: []*fakeTx{
		{commitErr: serializationErr()},
		{commitErr: serializationErr()},
		{commitErr: serializationErr()},
	}}
	m := NewTransactionManager(db)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, maxSerializableRetries, db.attempts)
	require.ErrorIs(t, err, ErrTxCommit)

	// Исходная ошибка Postgres не теряется при оборачивании
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, serializationFailure, string(pqErr.Code))
}

func TestDoSerializable_NoRetryOnOtherCommitError(t *testing.T) {
	db := &fakeDB{txs: []*fakeTx{
		{commitErr: errors.New("connection reset")},
		{},
	}}
	m := NewTransactionManager(db)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.ErrorIs(t, err, ErrTxCommit)
	assert.Equal(t, 1, db.attempts)
}

func TestDoSerializable_RetriesOnFnConflict(t *testing.T) {
	db := &fakeDB{txs: []*fakeTx{{}, {}}}
	m := NewTransactionManager(db)

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return serializationErr()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, db.txs[0].rolledBak)
	assert.True(t, db.txs[1].committed)
}

func TestDo_RollsBackOnFnError(t *testing.T) {
	db := &fakeDB{txs: []*fakeTx{{}}}
	m := NewTransactionManager(db)

	wantErr := errors.New("business error")
	err := m.Do(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.True(t, db.txs[0].rolledBak)
	assert.False(t, db.txs[0].committed)
}
