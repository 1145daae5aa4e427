// Package persistence implements repository interfaces using specific storage backends.
// This is the outermost layer - it implements ports defined in the domain layer.
package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/rai/user-records-go/modules/users/domain"
)

type userRow struct {
	firstName string
	lastName  string
	dob       string
	updatedAt time.Time
}

// InMemoryRepository keeps the Users and UserEmails collections in maps.
// A single mutex makes every operation atomic.
// Useful for testing and development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  map[string]userRow
	emails map[string]map[domain.Email]struct{}
	now    func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:  make(map[string]userRow),
		emails: make(map[string]map[domain.Email]struct{}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Compile-time interface check.
var _ domain.UserRepository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) CreateUser(ctx context.Context, profile domain.Profile) (domain.UserID, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserID{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := domain.NewUserID()
	r.users[id.String()] = userRow{
		firstName: profile.Name.FirstName(),
		lastName:  profile.Name.LastName(),
		dob:       profile.DOB.String(),
		updatedAt: r.now(),
	}
	set := make(map[domain.Email]struct{}, len(profile.Emails))
	for _, e := range profile.Emails {
		set[e] = struct{}{}
	}
	r.emails[id.String()] = set
	return id, nil
}

func (r *InMemoryRepository) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.users[id.String()]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	emails := make([]domain.Email, 0, len(r.emails[id.String()]))
	for e := range r.emails[id.String()] {
		emails = append(emails, e)
	}
	return domain.Reconstitute(id, domain.NewName(row.firstName, row.lastName), domain.DateOfBirth(row.dob), emails, row.updatedAt), nil
}

func (r *InMemoryRepository) UpdateUser(ctx context.Context, id domain.UserID, profile domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id.String()]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[id.String()] = userRow{
		firstName: profile.Name.FirstName(),
		lastName:  profile.Name.LastName(),
		dob:       profile.DOB.String(),
		updatedAt: r.now(),
	}
	set := r.emails[id.String()]
	if set == nil {
		set = make(map[domain.Email]struct{}, len(profile.Emails))
		r.emails[id.String()] = set
	}
	for _, e := range profile.Emails {
		set[e] = struct{}{}
	}
	return nil
}

func (r *InMemoryRepository) DeleteUser(ctx context.Context, id domain.UserID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id.String())
	delete(r.emails, id.String())
	return nil
}
