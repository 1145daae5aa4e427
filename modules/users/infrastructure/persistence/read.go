package persistence

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rai/user-records-go/modules/users/domain"
)

// readUserAndEmails runs the user-row read and the email read side by side
// and joins both. Neither read cancels the other, and a user-row failure
// (ErrUserNotFound included) wins over an email failure.
func readUserAndEmails[R any](
	ctx context.Context,
	readUser func(ctx context.Context) (R, error),
	readEmails func(ctx context.Context) ([]domain.Email, error),
) (R, []domain.Email, error) {
	var (
		row       R
		emails    []domain.Email
		userErr   error
		emailsErr error
		g         errgroup.Group
	)
	g.Go(func() error {
		row, userErr = readUser(ctx)
		return nil
	})
	g.Go(func() error {
		emails, emailsErr = readEmails(ctx)
		return nil
	})
	_ = g.Wait()

	var zero R
	if userErr != nil {
		return zero, nil, userErr
	}
	if emailsErr != nil {
		return zero, nil, emailsErr
	}
	return row, emails, nil
}
