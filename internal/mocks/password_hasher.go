package mocks

import "github.com/phrazzld/task-manager-api/internal/service/auth"

// MockPasswordHasher implements auth.PasswordHasher without bcrypt's cost.
// Hash prefixes the password with "hashed:"; Compare checks that form.
type MockPasswordHasher struct {
	HashErr error

	// HashCallCount tracks how many times Hash was called
	HashCallCount int

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	m.HashCallCount++
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}

// Compare implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if hashedPassword != "hashed:"+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
