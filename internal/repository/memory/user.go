package memory

import (
	"context"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
)

type userRow struct {
	user.User
}

type UserRepository struct {
	s *Store
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

// employeeIDFor must be called with the lock held.
func (s *Store) employeeIDFor(userID string) *string {
	for _, e := range s.employees {
		if e.UserID != nil && *e.UserID == userID {
			id := e.ID
			return &id
		}
	}
	return nil
}

func (s *Store) hydrateUser(row userRow) user.User {
	u := row.User
	u.EmployeeID = s.employeeIDFor(u.ID)
	return u
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.users {
		if strings.EqualFold(row.Email, email) {
			return r.s.hydrateUser(row), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return r.s.hydrateUser(row), nil
}

func (r *UserRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.users {
		if strings.EqualFold(row.Email, newUser.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
		if strings.EqualFold(row.Username, newUser.Username) {
			return user.User{}, user.ErrUsernameExists
		}
	}
	newUser.ID = newID()
	newUser.CreatedAt = r.s.now()
	newUser.UpdatedAt = newUser.CreatedAt
	newUser.EmployeeID = nil
	r.s.users[newUser.ID] = userRow{User: newUser}
	return r.s.hydrateUser(r.s.users[newUser.ID]), nil
}

func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.users {
		if strings.EqualFold(row.Email, email) || strings.EqualFold(row.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, row := range r.s.users {
		if strings.EqualFold(row.Email, email) {
			provider := "google"
			row.OAuthProvider = &provider
			row.OAuthProviderID = &googleID
			row.UpdatedAt = r.s.now()
			r.s.users[id] = row
			return r.s.hydrateUser(row), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role user.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	row.Role = role
	row.UpdatedAt = r.s.now()
	r.s.users[userID] = row
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	row.PasswordHash = &passwordHash
	row.UpdatedAt = r.s.now()
	r.s.users[userID] = row
	return nil
}
