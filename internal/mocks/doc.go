// Package mocks provides centralized mock implementations for testing.
//
// Two styles are available:
//
//   - function-field mocks (MockUserStore, MockTaskStore, MockJWTService)
//     that fall back to an in-memory implementation when a field is nil,
//     so handler and service tests can run realistic flows
//   - testify/mock mocks (TestifyMockUserStore) for asserting exact calls
//     and injecting failures
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	users.AddTokenFn = func(ctx context.Context, id uuid.UUID, token string) error {
//	    return errors.New("db down")
//	}
package mocks
