package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	platformspanner "github.com/rai/user-records-go/internal/platform/spanner"
	"github.com/rai/user-records-go/modules/shared/transaction"
	"github.com/rai/user-records-go/modules/users/domain"
)

const (
	spannerUsersTable  = "Users"
	spannerEmailsTable = "UserEmails"
)

var (
	spannerUserColumns  = []string{"UserId", "FirstName", "LastName", "Dob", "UpdatedAt"}
	spannerEmailColumns = []string{"UserId", "Email"}
)

// SpannerRepository stores users in Cloud Spanner. UserEmails is interleaved
// in Users, keyed by (UserId, Email).
type SpannerRepository struct {
	client *spanner.Client
	scope  transaction.Scope
}

// NewSpannerRepository creates a new Spanner-backed user repository.
func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{
		client: client,
		scope:  platformspanner.NewReadWriteTransactionScope(client),
	}
}

// Compile-time interface check.
var _ domain.UserRepository = (*SpannerRepository)(nil)

func (r *SpannerRepository) CreateUser(ctx context.Context, profile domain.Profile) (domain.UserID, error) {
	id := domain.NewUserID()
	if err := r.apply(ctx, spannerCreateMutations(id, profile)); err != nil {
		return domain.UserID{}, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *SpannerRepository) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var (
		row    *spanner.Row
		emails []domain.Email
		err    error
	)

	if rtx, ok := platformspanner.ReadTransactionFromContext(ctx); ok {
		row, err = spannerReadUserRow(ctx, rtx, id)
		if err == nil {
			emails, err = spannerReadEmails(ctx, rtx, id)
		}
	} else {
		// Independent single-use reads.
		row, emails, err = readUserAndEmails(ctx,
			func(ctx context.Context) (*spanner.Row, error) {
				return spannerReadUserRow(ctx, r.client.Single(), id)
			},
			func(ctx context.Context) ([]domain.Email, error) {
				return spannerReadEmails(ctx, r.client.Single(), id)
			},
		)
	}

	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return spannerScanUser(row, emails)
}

func (r *SpannerRepository) UpdateUser(ctx context.Context, id domain.UserID, profile domain.Profile) error {
	if err := r.apply(ctx, spannerUpdateMutations(id, profile)); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *SpannerRepository) DeleteUser(ctx context.Context, id domain.UserID) error {
	err := r.inReadWriteTx(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		emails, err := spannerReadEmails(ctx, tx, id)
		if err != nil {
			return err
		}
		return tx.BufferWrite(spannerDeleteMutations(id, emails))
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// apply commits ms as one unit: buffered into the caller's transaction when
// ctx carries one, otherwise as a single blind-write commit.
func (r *SpannerRepository) apply(ctx context.Context, ms []*spanner.Mutation) error {
	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return txn.BufferWrite(ms)
	}
	_, err := r.client.Apply(ctx, ms)
	return err
}

func (r *SpannerRepository) inReadWriteTx(ctx context.Context, fn func(ctx context.Context, tx *spanner.ReadWriteTransaction) error) error {
	if tx, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return fn(ctx, tx)
	}
	return r.scope.Execute(ctx, func(ctx context.Context) error {
		tx, ok := platformspanner.ReadWriteTxFromContext(ctx)
		if !ok {
			return errors.New("transaction scope did not provide a read-write transaction")
		}
		return fn(ctx, tx)
	})
}

func spannerCreateMutations(id domain.UserID, profile domain.Profile) []*spanner.Mutation {
	ms := make([]*spanner.Mutation, 0, len(profile.Emails)+1)
	ms = append(ms, spanner.Insert(spannerUsersTable, spannerUserColumns, []any{
		id.String(),
		profile.Name.FirstName(),
		profile.Name.LastName(),
		profile.DOB.String(),
		spanner.CommitTimestamp,
	}))
	for _, e := range profile.Emails {
		ms = append(ms, spanner.Insert(spannerEmailsTable, spannerEmailColumns, []any{id.String(), e.String()}))
	}
	return ms
}

// spannerUpdateMutations uses Update for the user row so a concurrently
// deleted user fails with NotFound instead of being recreated.
func spannerUpdateMutations(id domain.UserID, profile domain.Profile) []*spanner.Mutation {
	ms := make([]*spanner.Mutation, 0, len(profile.Emails)+1)
	ms = append(ms, spanner.Update(spannerUsersTable, spannerUserColumns, []any{
		id.String(),
		profile.Name.FirstName(),
		profile.Name.LastName(),
		profile.DOB.String(),
		spanner.CommitTimestamp,
	}))
	for _, e := range profile.Emails {
		ms = append(ms, spanner.InsertOrUpdate(spannerEmailsTable, spannerEmailColumns, []any{id.String(), e.String()}))
	}
	return ms
}

func spannerDeleteMutations(id domain.UserID, emails []domain.Email) []*spanner.Mutation {
	ms := make([]*spanner.Mutation, 0, len(emails)+1)
	for _, e := range emails {
		ms = append(ms, spanner.Delete(spannerEmailsTable, spanner.Key{id.String(), e.String()}))
	}
	return append(ms, spanner.Delete(spannerUsersTable, spanner.Key{id.String()}))
}

// spannerReadUserRow reads the Users row, reporting an absent row as
// ErrUserNotFound.
func spannerReadUserRow(ctx context.Context, rtx platformspanner.ReadTransaction, id domain.UserID) (*spanner.Row, error) {
	row, err := rtx.ReadRow(ctx, spannerUsersTable, spanner.Key{id.String()}, spannerUserColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return row, nil
}

func spannerReadEmails(ctx context.Context, rtx platformspanner.ReadTransaction, id domain.UserID) ([]domain.Email, error) {
	iter := rtx.Read(ctx, spannerEmailsTable, spanner.Key{id.String()}.AsPrefix(), []string{"Email"})
	defer iter.Stop()

	var emails []domain.Email
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return emails, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read user emails: %w", err)
		}

		var email string
		if err := row.Columns(&email); err != nil {
			return nil, fmt.Errorf("failed to scan user email: %w", err)
		}
		emails = append(emails, domain.Email(email))
	}
}

func spannerScanUser(row *spanner.Row, emails []domain.Email) (*domain.User, error) {
	var userID, firstName, lastName, dob string
	var updatedAt time.Time

	if err := row.Columns(&userID, &firstName, &lastName, &dob, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	id, err := domain.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}

	return domain.Reconstitute(id, domain.NewName(firstName, lastName), domain.DateOfBirth(dob), emails, updatedAt), nil
}
