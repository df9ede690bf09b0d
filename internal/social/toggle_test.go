package social

import (
	"context"
	"errors"
	"testing"

	"github.com/clipstream/backend/internal/models"
)

type fakeLikeStore struct {
	likes        map[string]Like
	conflictOnce bool
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]Like)}
}

func likeKey(actorID string, target Target) string {
	return actorID + "|" + string(target.Kind) + "|" + target.ID
}

func (s *fakeLikeStore) Remove(_ context.Context, actorID string, target Target) (bool, error) {
	key := likeKey(actorID, target)
	if _, ok := s.likes[key]; !ok {
		return false, nil
	}
	delete(s.likes, key)
	return true, nil
}

func (s *fakeLikeStore) Insert(_ context.Context, like Like) error {
	if s.conflictOnce {
		s.conflictOnce = false
		s.likes[likeKey(like.ActorID, like.Target)] = like
		return ErrDuplicate
	}
	key := likeKey(like.ActorID, like.Target)
	if _, ok := s.likes[key]; ok {
		return ErrDuplicate
	}
	s.likes[key] = like
	return nil
}

type fakeSubscriptionStore struct {
	subs map[string]models.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]models.Subscription)}
}

func subKey(subscriberID, channelID string) string {
	return subscriberID + "|" + channelID
}

func (s *fakeSubscriptionStore) Remove(_ context.Context, subscriberID, channelID string) (bool, error) {
	key := subKey(subscriberID, channelID)
	if _, ok := s.subs[key]; !ok {
		return false, nil
	}
	delete(s.subs, key)
	return true, nil
}

func (s *fakeSubscriptionStore) Insert(_ context.Context, sub models.Subscription) error {
	key := subKey(sub.SubscriberID, sub.ChannelID)
	if _, ok := s.subs[key]; ok {
		return ErrDuplicate
	}
	s.subs[key] = sub
	return nil
}

func (s *fakeSubscriptionStore) ListSubscribers(_ context.Context, channelID string) ([]models.Owner, error) {
	var owners []models.Owner
	for _, sub := range s.subs {
		if sub.ChannelID == channelID {
			owners = append(owners, models.Owner{ID: sub.SubscriberID})
		}
	}
	return owners, nil
}

func (s *fakeSubscriptionStore) ListChannels(_ context.Context, subscriberID string) ([]models.Owner, error) {
	var owners []models.Owner
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			owners = append(owners, models.Owner{ID: sub.ChannelID})
		}
	}
	return owners, nil
}

type fakeVerifier struct {
	targets map[string]bool
	users   map[string]bool
}

func (v fakeVerifier) TargetExists(_ context.Context, target Target) (bool, error) {
	return v.targets[target.ID], nil
}

func (v fakeVerifier) UserExists(_ context.Context, id string) (bool, error) {
	return v.users[id], nil
}

func newTestEngine() (*Engine, *fakeLikeStore, *fakeSubscriptionStore, fakeVerifier) {
	likes := newFakeLikeStore()
	subs := newFakeSubscriptionStore()
	verifier := fakeVerifier{targets: make(map[string]bool), users: make(map[string]bool)}
	return NewEngine(likes, subs, verifier), likes, subs, verifier
}

func TestToggleLikeRoundTrip(t *testing.T) {
	engine, likes, _, verifier := newTestEngine()
	videoID := models.NewID()
	verifier.targets[videoID] = true

	state, like, err := engine.ToggleLike(context.Background(), "actor-1", VideoTarget(videoID))
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if state != StateAdded {
		t.Fatalf("expected added got %s", state)
	}
	if like == nil || like.ActorID != "actor-1" {
		t.Fatalf("expected like record, got %+v", like)
	}
	if len(likes.likes) != 1 {
		t.Fatalf("expected one like, got %d", len(likes.likes))
	}

	state, like, err = engine.ToggleLike(context.Background(), "actor-1", VideoTarget(videoID))
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if state != StateRemoved {
		t.Fatalf("expected removed got %s", state)
	}
	if like != nil {
		t.Fatalf("expected nil like on removal, got %+v", like)
	}
	if len(likes.likes) != 0 {
		t.Fatal("expected like to be removed")
	}
}

func TestToggleLikeValidation(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	if _, _, err := engine.ToggleLike(context.Background(), "actor-1", VideoTarget("not-a-uuid")); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected invalid target got %v", err)
	}

	missing := models.NewID()
	if _, _, err := engine.ToggleLike(context.Background(), "actor-1", VideoTarget(missing)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestToggleLikeInsertConflict(t *testing.T) {
	engine, likes, _, verifier := newTestEngine()
	tweetID := models.NewID()
	verifier.targets[tweetID] = true

	// Simulate a concurrent create winning between this toggle's remove
	// check and its insert: the conflict must resolve as a removal.
	likes.conflictOnce = true

	state, like, err := engine.ToggleLike(context.Background(), "actor-1", TweetTarget(tweetID))
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if state != StateRemoved {
		t.Fatalf("expected removed after conflict got %s", state)
	}
	if like != nil {
		t.Fatalf("expected nil like, got %+v", like)
	}
	if len(likes.likes) != 0 {
		t.Fatal("expected relation to be gone after conflict resolution")
	}
}

func TestToggleSubscriptionRoundTrip(t *testing.T) {
	engine, _, subs, verifier := newTestEngine()
	channelID := models.NewID()
	verifier.users[channelID] = true

	state, sub, err := engine.ToggleSubscription(context.Background(), "subscriber-1", channelID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if state != StateAdded || sub == nil {
		t.Fatalf("expected added subscription, got %s %+v", state, sub)
	}

	state, sub, err = engine.ToggleSubscription(context.Background(), "subscriber-1", channelID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if state != StateRemoved || sub != nil {
		t.Fatalf("expected removed subscription, got %s %+v", state, sub)
	}
	if len(subs.subs) != 0 {
		t.Fatal("expected subscription to be removed")
	}
}

func TestToggleSubscriptionSelf(t *testing.T) {
	engine, _, _, verifier := newTestEngine()
	userID := models.NewID()
	verifier.users[userID] = true

	if _, _, err := engine.ToggleSubscription(context.Background(), userID, userID); !errors.Is(err, ErrSelfSubscription) {
		t.Fatalf("expected self subscription error got %v", err)
	}
}

func TestChannelSubscribers(t *testing.T) {
	engine, _, _, verifier := newTestEngine()
	channelID := models.NewID()
	verifier.users[channelID] = true

	subscriberID := models.NewID()
	verifier.users[subscriberID] = true
	if _, _, err := engine.ToggleSubscription(context.Background(), subscriberID, channelID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	subscribers, err := engine.ChannelSubscribers(context.Background(), channelID)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if len(subscribers) != 1 || subscribers[0].ID != subscriberID {
		t.Fatalf("expected single subscriber %s, got %+v", subscriberID, subscribers)
	}

	channels, err := engine.SubscribedChannels(context.Background(), subscriberID)
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != channelID {
		t.Fatalf("expected single channel %s, got %+v", channelID, channels)
	}

	missing := models.NewID()
	if _, err := engine.ChannelSubscribers(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for missing channel got %v", err)
	}
}
