package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rai/user-records-go/internal/platform/postgres"
	"github.com/rai/user-records-go/modules/shared/transaction"
	"github.com/rai/user-records-go/modules/users/domain"
)

const (
	pgInsertUser = `INSERT INTO users (user_id, first_name, last_name, dob, updated_at)
		VALUES ($1, $2, $3, $4, now())`
	pgInsertEmail = `INSERT INTO user_emails (user_id, email) VALUES ($1, $2)
		ON CONFLICT (user_id, email) DO NOTHING`
	pgSelectUser = `SELECT user_id, first_name, last_name, dob, updated_at
		FROM users WHERE user_id = $1`
	pgSelectEmails          = `SELECT email FROM user_emails WHERE user_id = $1 ORDER BY email`
	pgSelectEmailsForUpdate = `SELECT email FROM user_emails WHERE user_id = $1 FOR UPDATE`
	pgUpdateUser            = `UPDATE users SET first_name = $2, last_name = $3, dob = $4, updated_at = now()
		WHERE user_id = $1`
	pgDeleteEmail = `DELETE FROM user_emails WHERE user_id = $1 AND email = $2`
	pgDeleteUser  = `DELETE FROM users WHERE user_id = $1`
)

// PostgresRepository stores users in the users and user_emails tables
// (schema/postgres.sql).
type PostgresRepository struct {
	db    *sql.DB
	scope transaction.Scope
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, scope: postgres.NewTxScope(db, nil)}
}

// Compile-time interface check.
var _ domain.UserRepository = (*PostgresRepository)(nil)

func (r *PostgresRepository) CreateUser(ctx context.Context, profile domain.Profile) (domain.UserID, error) {
	return transaction.ExecuteWithResult(ctx, r.scope, func(ctx context.Context) (domain.UserID, error) {
		exec := postgres.ExecutorFromContext(ctx, r.db)
		id := domain.NewUserID()

		if _, err := exec.ExecContext(ctx, pgInsertUser,
			id.String(), profile.Name.FirstName(), profile.Name.LastName(), profile.DOB.String(),
		); err != nil {
			return domain.UserID{}, fmt.Errorf("insert user: %w", err)
		}
		if err := pgInsertEmails(ctx, exec, id, profile.Emails); err != nil {
			return domain.UserID{}, err
		}
		return id, nil
	})
}

func (r *PostgresRepository) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var (
		row    pgUserRow
		emails []domain.Email
	)

	if tx, ok := postgres.TxFromContext(ctx); ok {
		// A *sql.Tx runs one statement at a time.
		var err error
		if row, err = pgReadUser(ctx, tx, id); err != nil {
			return nil, err
		}
		if emails, err = pgReadEmails(ctx, tx, id); err != nil {
			return nil, err
		}
	} else {
		var err error
		row, emails, err = readUserAndEmails(ctx,
			func(ctx context.Context) (pgUserRow, error) { return pgReadUser(ctx, r.db, id) },
			func(ctx context.Context) ([]domain.Email, error) { return pgReadEmails(ctx, r.db, id) },
		)
		if err != nil {
			return nil, err
		}
	}

	parsed, err := domain.ParseUserID(row.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	return domain.Reconstitute(parsed, domain.NewName(row.firstName, row.lastName), domain.DateOfBirth(row.dob), emails, row.updatedAt.UTC()), nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, id domain.UserID, profile domain.Profile) error {
	return r.scope.Execute(ctx, func(ctx context.Context) error {
		exec := postgres.ExecutorFromContext(ctx, r.db)

		res, err := exec.ExecContext(ctx, pgUpdateUser,
			id.String(), profile.Name.FirstName(), profile.Name.LastName(), profile.DOB.String(),
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		return pgInsertEmails(ctx, exec, id, profile.Emails)
	})
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, id domain.UserID) error {
	return r.scope.Execute(ctx, func(ctx context.Context) error {
		exec := postgres.ExecutorFromContext(ctx, r.db)

		emails, err := pgQueryEmails(ctx, exec, pgSelectEmailsForUpdate, id)
		if err != nil {
			return err
		}
		for _, e := range emails {
			if _, err := exec.ExecContext(ctx, pgDeleteEmail, id.String(), e.String()); err != nil {
				return fmt.Errorf("delete user email: %w", err)
			}
		}
		if _, err := exec.ExecContext(ctx, pgDeleteUser, id.String()); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

type pgUserRow struct {
	userID    string
	firstName string
	lastName  string
	dob       string
	updatedAt time.Time
}

func pgReadUser(ctx context.Context, exec postgres.Executor, id domain.UserID) (pgUserRow, error) {
	var row pgUserRow
	err := exec.QueryRowContext(ctx, pgSelectUser, id.String()).
		Scan(&row.userID, &row.firstName, &row.lastName, &row.dob, &row.updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return pgUserRow{}, domain.ErrUserNotFound
	}
	if err != nil {
		return pgUserRow{}, fmt.Errorf("read user: %w", err)
	}
	return row, nil
}

func pgReadEmails(ctx context.Context, exec postgres.Executor, id domain.UserID) ([]domain.Email, error) {
	return pgQueryEmails(ctx, exec, pgSelectEmails, id)
}

func pgQueryEmails(ctx context.Context, exec postgres.Executor, query string, id domain.UserID) ([]domain.Email, error) {
	rows, err := exec.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("read user emails: %w", err)
	}
	defer rows.Close()

	var emails []domain.Email
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan user email: %w", err)
		}
		emails = append(emails, domain.Email(email))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read user emails: %w", err)
	}
	return emails, nil
}

func pgInsertEmails(ctx context.Context, exec postgres.Executor, id domain.UserID, emails []domain.Email) error {
	for _, e := range emails {
		if _, err := exec.ExecContext(ctx, pgInsertEmail, id.String(), e.String()); err != nil {
			return fmt.Errorf("insert user email: %w", err)
		}
	}
	return nil
}
