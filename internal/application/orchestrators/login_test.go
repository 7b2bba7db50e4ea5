package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"advent/internal/domain/user"
)

// mockUserStore implements the orchestrator store interfaces for testing.
type mockUserStore struct {
	users    map[string]user.User // keyed by ID
	saveErr  error
	storeErr error // returned from every read when set, simulating an unreachable store
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]user.User)}
}

// GetByID implements the user store interface for testing.
func (m *mockUserStore) GetByID(_ context.Context, id string) (user.User, error) {
	if m.storeErr != nil {
		return user.User{}, m.storeErr
	}
	u, ok := m.users[id]
	if !ok {
		return user.User{}, errors.New("not found")
	}
	return u, nil
}

// GetByUsername implements the user store interface for testing.
func (m *mockUserStore) GetByUsername(_ context.Context, username string) (user.User, error) {
	if m.storeErr != nil {
		return user.User{}, m.storeErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, errors.New("not found")
}

// Save implements the user store interface for testing.
func (m *mockUserStore) Save(_ context.Context, u user.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users[u.ID] = u
	return nil
}

// Delete implements the user store interface for testing.
func (m *mockUserStore) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

// Count implements the user store interface for testing.
func (m *mockUserStore) Count(_ context.Context) (int, error) {
	if m.storeErr != nil {
		return 0, m.storeErr
	}
	return len(m.users), nil
}

// addUser stores a user with a real bcrypt hash for the given password.
func (m *mockUserStore) addUser(t *testing.T, id, username, password, role string) {
	t.Helper()
	u := user.User{ID: id, Username: username, Role: role, CreatedAt: time.Now()}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	m.users[id] = u
}

// --- ExecuteLogin tests ---

// TestExecuteLogin_Success tests login with correct credentials.
func TestExecuteLogin_Success(t *testing.T) {
	store := newMockUserStore()
	store.addUser(t, "u1", "ann", "secret1", user.RoleUser)

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Username: "ann",
		Password: "secret1",
	}, LoginDeps{UserStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UserID != "u1" {
		t.Errorf("UserID = %s, want u1", result.UserID)
	}
	if result.Role != user.RoleUser {
		t.Errorf("Role = %s, want user", result.Role)
	}
	if result.Username != "ann" {
		t.Errorf("Username = %s, want ann", result.Username)
	}
}

// TestExecuteLogin_AdminRole tests that the session carries the stored role.
func TestExecuteLogin_AdminRole(t *testing.T) {
	store := newMockUserStore()
	store.addUser(t, "u1", "admin", "hunter2x", user.RoleAdmin)

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Username: "admin",
		Password: "hunter2x",
	}, LoginDeps{UserStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Role != user.RoleAdmin {
		t.Errorf("Role = %s, want admin", result.Role)
	}
}

// TestExecuteLogin_GenericFailure tests that unknown username and wrong
// password yield the identical generic error.
func TestExecuteLogin_GenericFailure(t *testing.T) {
	store := newMockUserStore()
	store.addUser(t, "u1", "ann", "secret1", user.RoleUser)

	_, errUnknown := ExecuteLogin(context.Background(), LoginInput{
		Username: "nobody",
		Password: "secret1",
	}, LoginDeps{UserStore: store})

	_, errWrong := ExecuteLogin(context.Background(), LoginInput{
		Username: "ann",
		Password: "wrong",
	}, LoginDeps{UserStore: store})

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Error("failure messages must not disclose which field was wrong")
	}
}

// TestExecuteLogin_EmptyFields tests that empty input short-circuits.
func TestExecuteLogin_EmptyFields(t *testing.T) {
	store := newMockUserStore()
	for _, input := range []LoginInput{
		{Username: "", Password: "secret1"},
		{Username: "ann", Password: ""},
		{},
	} {
		if _, err := ExecuteLogin(context.Background(), input, LoginDeps{UserStore: store}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("input %+v: error = %v, want ErrInvalidCredentials", input, err)
		}
	}
}

// TestExecuteLogin_StoreUnavailable tests that store failures degrade to the
// generic credentials error instead of crashing or leaking detail.
func TestExecuteLogin_StoreUnavailable(t *testing.T) {
	store := newMockUserStore()
	store.storeErr = errors.New("connection refused")

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Username: "ann",
		Password: "secret1",
	}, LoginDeps{UserStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}
