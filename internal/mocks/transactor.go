package mocks

import (
	"context"

	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockTransactor implements store.Transactor by calling the function with a
// nil transaction. Mock stores ignore the transaction in WithTx.
type MockTransactor struct {
	// Err, when set, is returned without running the function.
	Err error

	// Calls counts RunInTransaction invocations.
	Calls int
}

var _ store.Transactor = (*MockTransactor)(nil)

// RunInTransaction implements store.Transactor.
func (m *MockTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
