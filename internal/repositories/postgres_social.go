package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/social"
)

// PostgresSocialRepository backs the toggle engine's like and subscription
// stores. The unique indexes on (liked_by, target_kind, target_id) and
// (subscriber_id, channel_id) carry the at-most-one-relation invariant.
type PostgresSocialRepository struct {
	pool db.Pool
}

// NewPostgresSocialRepository constructs a social repository backed by PostgreSQL.
func NewPostgresSocialRepository(pool db.Pool) *PostgresSocialRepository {
	return &PostgresSocialRepository{pool: pool}
}

// Remove deletes a like relation and reports whether a row existed.
func (r *PostgresSocialRepository) Remove(ctx context.Context, actorID string, target social.Target) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
    `, actorID, string(target.Kind), target.ID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Insert creates a like relation, surfacing duplicates as social.ErrDuplicate.
func (r *PostgresSocialRepository) Insert(ctx context.Context, like social.Like) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, target_kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, like.ID, like.ActorID, string(like.Target.Kind), like.Target.ID, like.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return social.ErrDuplicate
		}
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// PostgresSubscriptionRepository persists subscription relations.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Remove deletes a subscription relation and reports whether a row existed.
func (r *PostgresSubscriptionRepository) Remove(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Insert creates a subscription relation, surfacing duplicates as social.ErrDuplicate.
func (r *PostgresSubscriptionRepository) Insert(ctx context.Context, sub models.Subscription) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return social.ErrDuplicate
			case "23503":
				return social.ErrNotFound
			}
		}
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// ListSubscribers returns reduced profiles of everyone subscribed to the channel.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.Owner, error) {
	return r.listUsers(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
}

// ListChannels returns reduced profiles of every channel the user follows.
func (r *PostgresSubscriptionRepository) ListChannels(ctx context.Context, subscriberID string) ([]models.Owner, error) {
	return r.listUsers(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) listUsers(ctx context.Context, query, id string) ([]models.Owner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query subscription users: %w", err)
	}
	defer rows.Close()

	var users []models.Owner
	for rows.Next() {
		var user models.Owner
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.Avatar); err != nil {
			return nil, fmt.Errorf("scan subscription user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription users: %w", err)
	}

	return users, nil
}

// PostgresTargetVerifier confirms toggle targets exist before relations are written.
type PostgresTargetVerifier struct {
	pool db.Pool
}

// NewPostgresTargetVerifier constructs a target verifier backed by PostgreSQL.
func NewPostgresTargetVerifier(pool db.Pool) *PostgresTargetVerifier {
	return &PostgresTargetVerifier{pool: pool}
}

// TargetExists reports whether the liked entity is present in its collection.
func (v *PostgresTargetVerifier) TargetExists(ctx context.Context, target social.Target) (bool, error) {
	var table string
	switch target.Kind {
	case social.TargetVideo:
		table = "videos"
	case social.TargetComment:
		table = "comments"
	case social.TargetTweet:
		table = "tweets"
	default:
		return false, fmt.Errorf("unknown target kind %q", target.Kind)
	}

	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, target.ID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s exists: %w", target.Kind, err)
	}

	return exists, nil
}

// UserExists reports whether a user record is present.
func (v *PostgresTargetVerifier) UserExists(ctx context.Context, id string) (bool, error) {
	conn, err := v.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

var _ social.LikeStore = (*PostgresSocialRepository)(nil)
var _ social.SubscriptionStore = (*PostgresSubscriptionRepository)(nil)
var _ social.TargetVerifier = (*PostgresTargetVerifier)(nil)
