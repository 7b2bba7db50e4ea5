package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"advent/internal/domain/user"

	"github.com/google/uuid"
)

// UserStoreForCreate defines the store interface needed by CreateUser.
type UserStoreForCreate interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Save(ctx context.Context, u user.User) error
	Count(ctx context.Context) (int, error)
}

// WelcomeSender sends a welcome email to newly created users. Optional.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, username string) error
}

// CreateUserInput carries input for the orchestrator.
type CreateUserInput struct {
	Username string
	Password string
	Role     string
}

// CreateUserDeps holds dependencies for CreateUser.
type CreateUserDeps struct {
	UserStore UserStoreForCreate
	Welcome   WelcomeSender // nil disables the welcome email
}

var ErrUsernameTaken = errors.New("username already exists")

// ExecuteCreateUser coordinates user creation.
// PRE: Valid username and password per domain rules
// POST: User created with hashed password
// INVARIANT: Username must be unique
func ExecuteCreateUser(ctx context.Context, input CreateUserInput, deps CreateUserDeps) (string, error) {
	u := user.User{
		ID:        uuid.New().String(),
		Username:  input.Username,
		Role:      input.Role,
		CreatedAt: time.Now(),
	}

	// Validate domain rules first so malformed input never reaches the store
	if err := u.Validate(); err != nil {
		return "", err
	}

	// Check if username already exists
	if _, err := deps.UserStore.GetByUsername(ctx, input.Username); err == nil {
		return "", ErrUsernameTaken
	}

	// Set password (handles hashing and length validation)
	if err := u.SetPassword(input.Password); err != nil {
		return "", err
	}

	if err := deps.UserStore.Save(ctx, u); err != nil {
		// A concurrent create can slip past the lookup above; the store
		// reports the unique-index collision and it surfaces the same way.
		if errors.Is(err, user.ErrDuplicateUsername) {
			return "", ErrUsernameTaken
		}
		return "", err
	}

	slog.Info("admin_event", "event", "user_created", "username", input.Username, "role", input.Role)

	// Welcome email is best-effort; account creation already succeeded
	if deps.Welcome != nil {
		if err := deps.Welcome.SendWelcome(ctx, u.Username); err != nil {
			slog.Warn("email_event", "event", "welcome_failed", "username", u.Username, "error", err.Error())
		}
	}

	return u.ID, nil
}

// ExecuteSeedAdmin creates a default admin user if no users exist.
// PRE: Database is initialized
// POST: Admin user created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateUserDeps, username, password string) error {
	count, err := deps.UserStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Users already exist, skip seeding
	}

	_, err = ExecuteCreateUser(ctx, CreateUserInput{
		Username: username,
		Password: password,
		Role:     user.RoleAdmin,
	}, CreateUserDeps{UserStore: deps.UserStore})
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "username", username)
	return nil
}
