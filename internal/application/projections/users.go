package projections

import (
	"context"
	"time"

	"advent/internal/domain/user"
)

// UserListStore defines the user store interface for the user list view.
type UserListStore interface {
	List(ctx context.Context) ([]user.User, error)
}

// UserListDeps holds dependencies for the user list projection.
type UserListDeps struct {
	UserStore UserListStore
}

// UserView is one user row on the admin dashboard. It deliberately has no
// password field of any kind.
type UserView struct {
	ID        string
	Username  string
	Role      string
	IsAdmin   bool
	CreatedAt time.Time
}

// QueryUserList returns all users for the admin dashboard, username ascending,
// with credential material stripped.
// PRE: none
// POST: Returns one view per stored user, no password hashes
func QueryUserList(ctx context.Context, deps UserListDeps) ([]UserView, error) {
	users, err := deps.UserStore.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{
			ID:        u.ID,
			Username:  u.Username,
			Role:      u.Role,
			IsAdmin:   u.IsAdmin(),
			CreatedAt: u.CreatedAt,
		})
	}
	return views, nil
}
