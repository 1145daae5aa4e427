package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rai/user-records-go/modules/users/domain"
)

// redisMaxTxRetries bounds how often a WATCHed transaction is replayed after
// a concurrent writer touched one of its keys.
const redisMaxTxRetries = 5

// RedisRepository stores each user as a hash at {prefix}users:{id} and its
// emails as a set at {prefix}users:{id}:emails. Writes go through MULTI/EXEC;
// read-modify-write paths WATCH the keys they read.
type RedisRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// RedisRepositoryOption configures a RedisRepository instance.
type RedisRepositoryOption func(*RedisRepository)

// WithKeyPrefix namespaces every key, e.g. per environment.
func WithKeyPrefix(prefix string) RedisRepositoryOption {
	return func(r *RedisRepository) {
		r.prefix = prefix
	}
}

func NewRedisRepository(client *redis.Client, opts ...RedisRepositoryOption) *RedisRepository {
	r := &RedisRepository{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Compile-time interface check.
var _ domain.UserRepository = (*RedisRepository)(nil)

func (r *RedisRepository) userKey(id domain.UserID) string {
	return r.prefix + "users:" + id.String()
}

func (r *RedisRepository) emailsKey(id domain.UserID) string {
	return r.userKey(id) + ":emails"
}

func (r *RedisRepository) CreateUser(ctx context.Context, profile domain.Profile) (domain.UserID, error) {
	id := domain.NewUserID()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.userKey(id), r.userFields(id, profile))
		if len(profile.Emails) > 0 {
			pipe.SAdd(ctx, r.emailsKey(id), redisMembers(profile.Emails)...)
		}
		return nil
	})
	if err != nil {
		return domain.UserID{}, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *RedisRepository) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	fields, emails, err := readUserAndEmails(ctx,
		func(ctx context.Context) (map[string]string, error) {
			fields, err := r.client.HGetAll(ctx, r.userKey(id)).Result()
			if err != nil {
				return nil, fmt.Errorf("read user: %w", err)
			}
			if len(fields) == 0 {
				return nil, domain.ErrUserNotFound
			}
			return fields, nil
		},
		func(ctx context.Context) ([]domain.Email, error) {
			members, err := r.client.SMembers(ctx, r.emailsKey(id)).Result()
			if err != nil {
				return nil, fmt.Errorf("read user emails: %w", err)
			}
			emails := make([]domain.Email, len(members))
			for i, m := range members {
				emails[i] = domain.Email(m)
			}
			return emails, nil
		},
	)
	if err != nil {
		return nil, err
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updatedAt"])
	if err != nil {
		return nil, fmt.Errorf("parse updatedAt: %w", err)
	}
	return domain.Reconstitute(id, domain.NewName(fields["firstName"], fields["lastName"]), domain.DateOfBirth(fields["dob"]), emails, updatedAt), nil
}

func (r *RedisRepository) UpdateUser(ctx context.Context, id domain.UserID, profile domain.Profile) error {
	userKey := r.userKey(id)
	err := r.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, userKey).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, userKey, r.userFields(id, profile))
			if len(profile.Emails) > 0 {
				pipe.SAdd(ctx, r.emailsKey(id), redisMembers(profile.Emails)...)
			}
			return nil
		})
		return err
	}, userKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUserNotFound):
		return err
	default:
		return fmt.Errorf("update user: %w", err)
	}
}

func (r *RedisRepository) DeleteUser(ctx context.Context, id domain.UserID) error {
	userKey, emailsKey := r.userKey(id), r.emailsKey(id)
	err := r.watch(ctx, func(tx *redis.Tx) error {
		members, err := tx.SMembers(ctx, emailsKey).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(members) > 0 {
				args := make([]any, len(members))
				for i, m := range members {
					args[i] = m
				}
				pipe.SRem(ctx, emailsKey, args...)
			}
			pipe.Del(ctx, userKey)
			return nil
		})
		return err
	}, userKey, emailsKey)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// watch runs fn under WATCH on keys, replaying it when the optimistic lock
// loses to a concurrent writer.
func (r *RedisRepository) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for range redisMaxTxRetries {
		err = r.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (r *RedisRepository) userFields(id domain.UserID, profile domain.Profile) map[string]any {
	return map[string]any{
		"userId":    id.String(),
		"firstName": profile.Name.FirstName(),
		"lastName":  profile.Name.LastName(),
		"dob":       profile.DOB.String(),
		"updatedAt": r.now().Format(time.RFC3339Nano),
	}
}

func redisMembers(emails []domain.Email) []any {
	out := make([]any, len(emails))
	for i, e := range emails {
		out[i] = e.String()
	}
	return out
}
