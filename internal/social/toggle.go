// Package social maintains the presence relations between users and the
// entities they interact with: likes on videos, comments, and tweets, and
// channel subscriptions. Each relation follows the same toggle contract:
// at most one record exists per (actor, target) pair, and toggling creates
// the record if absent or removes it if present.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipstream/backend/internal/models"
)

var (
	// ErrInvalidTarget indicates a malformed or missing target identifier.
	ErrInvalidTarget = errors.New("invalid target id")
	// ErrSelfSubscription indicates a user attempted to subscribe to their own channel.
	ErrSelfSubscription = errors.New("cannot subscribe to own channel")
	// ErrNotFound indicates the toggle target does not exist.
	ErrNotFound = errors.New("target not found")
	// ErrDuplicate indicates the relation already exists; stores return it
	// from Insert when a concurrent toggle wins the race.
	ErrDuplicate = errors.New("relation already exists")
)

// TargetKind enumerates the entity kinds a like may point at.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// Target names exactly one likeable entity.
type Target struct {
	Kind TargetKind
	ID   string
}

// VideoTarget builds a Target pointing at a video.
func VideoTarget(id string) Target { return Target{Kind: TargetVideo, ID: id} }

// CommentTarget builds a Target pointing at a comment.
func CommentTarget(id string) Target { return Target{Kind: TargetComment, ID: id} }

// TweetTarget builds a Target pointing at a tweet.
func TweetTarget(id string) Target { return Target{Kind: TargetTweet, ID: id} }

// Like records that an actor likes a single target entity.
type Like struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"likedBy"`
	Target    Target    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToggleState reports which side of the toggle a call landed on.
type ToggleState string

const (
	StateAdded   ToggleState = "added"
	StateRemoved ToggleState = "removed"
)

// LikeStore persists like relations keyed by (actor, target kind, target id).
type LikeStore interface {
	// Remove deletes the relation if present and reports whether a row was removed.
	Remove(ctx context.Context, actorID string, target Target) (bool, error)
	// Insert creates the relation, returning ErrDuplicate if it already exists.
	Insert(ctx context.Context, like Like) error
}

// SubscriptionStore persists subscription relations keyed by (subscriber, channel).
type SubscriptionStore interface {
	Remove(ctx context.Context, subscriberID, channelID string) (bool, error)
	Insert(ctx context.Context, sub models.Subscription) error
	ListSubscribers(ctx context.Context, channelID string) ([]models.Owner, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.Owner, error)
}

// TargetVerifier confirms that toggle targets exist before any relation is written.
type TargetVerifier interface {
	TargetExists(ctx context.Context, target Target) (bool, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// Engine implements the toggle contract over the relation stores.
type Engine struct {
	likes    LikeStore
	subs     SubscriptionStore
	verifier TargetVerifier
	now      func() time.Time
}

// NewEngine constructs a toggle engine over the provided stores.
func NewEngine(likes LikeStore, subs SubscriptionStore, verifier TargetVerifier) *Engine {
	return &Engine{
		likes:    likes,
		subs:     subs,
		verifier: verifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ToggleLike flips the like relation between the actor and the target.
// The returned like is non-nil only when the relation was added.
//
// The uniqueness invariant is enforced by the storage layer's unique key on
// (actor, kind, target): when a concurrent toggle wins the insert race, the
// conflict is treated as "already present" and resolved by removing it.
func (e *Engine) ToggleLike(ctx context.Context, actorID string, target Target) (ToggleState, *Like, error) {
	if !models.IsValidID(target.ID) {
		return "", nil, ErrInvalidTarget
	}

	exists, err := e.verifier.TargetExists(ctx, target)
	if err != nil {
		return "", nil, fmt.Errorf("verify %s target: %w", target.Kind, err)
	}
	if !exists {
		return "", nil, ErrNotFound
	}

	removed, err := e.likes.Remove(ctx, actorID, target)
	if err != nil {
		return "", nil, fmt.Errorf("remove like: %w", err)
	}
	if removed {
		return StateRemoved, nil, nil
	}

	like := Like{
		ID:        models.NewID(),
		ActorID:   actorID,
		Target:    target,
		CreatedAt: e.now(),
	}

	if err := e.likes.Insert(ctx, like); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Lost the race to a concurrent create; the relation is present,
			// so this toggle resolves as a removal.
			if _, err := e.likes.Remove(ctx, actorID, target); err != nil {
				return "", nil, fmt.Errorf("remove like after conflict: %w", err)
			}
			return StateRemoved, nil, nil
		}
		return "", nil, fmt.Errorf("insert like: %w", err)
	}

	return StateAdded, &like, nil
}

// ToggleSubscription flips the subscription relation between a subscriber
// and a channel. Subscribing to one's own channel is rejected.
func (e *Engine) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (ToggleState, *models.Subscription, error) {
	if !models.IsValidID(channelID) {
		return "", nil, ErrInvalidTarget
	}
	if subscriberID == channelID {
		return "", nil, ErrSelfSubscription
	}

	exists, err := e.verifier.UserExists(ctx, channelID)
	if err != nil {
		return "", nil, fmt.Errorf("verify channel: %w", err)
	}
	if !exists {
		return "", nil, ErrNotFound
	}

	removed, err := e.subs.Remove(ctx, subscriberID, channelID)
	if err != nil {
		return "", nil, fmt.Errorf("remove subscription: %w", err)
	}
	if removed {
		return StateRemoved, nil, nil
	}

	sub := models.Subscription{
		ID:           models.NewID(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    e.now(),
	}

	if err := e.subs.Insert(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicate) {
			if _, err := e.subs.Remove(ctx, subscriberID, channelID); err != nil {
				return "", nil, fmt.Errorf("remove subscription after conflict: %w", err)
			}
			return StateRemoved, nil, nil
		}
		return "", nil, fmt.Errorf("insert subscription: %w", err)
	}

	return StateAdded, &sub, nil
}

// ChannelSubscribers returns the reduced profiles of a channel's subscribers.
func (e *Engine) ChannelSubscribers(ctx context.Context, channelID string) ([]models.Owner, error) {
	if !models.IsValidID(channelID) {
		return nil, ErrInvalidTarget
	}

	exists, err := e.verifier.UserExists(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("verify channel: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	return e.subs.ListSubscribers(ctx, channelID)
}

// SubscribedChannels returns the reduced profiles of the channels a user follows.
func (e *Engine) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.Owner, error) {
	if !models.IsValidID(subscriberID) {
		return nil, ErrInvalidTarget
	}

	exists, err := e.verifier.UserExists(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("verify subscriber: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	return e.subs.ListChannels(ctx, subscriberID)
}
