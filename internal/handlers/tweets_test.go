package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clipstream/backend/internal/models"
)

func newTweetHandler() (TweetHandler, *inMemoryTweetStore) {
	tweets := newInMemoryTweetStore()
	handler := TweetHandler{
		Tweets:  tweets,
		Views:   stubMaterializer{},
		NowFunc: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	return handler, tweets
}

func TestTweetHandlerCreate(t *testing.T) {
	handler, tweets := newTweetHandler()

	req := jsonRequest(http.MethodPost, "/api/v1/tweets", `{"content":"hello world"}`)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var created models.Tweet
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.OwnerID != "actor-1" || created.Content != "hello world" {
		t.Fatalf("unexpected tweet: %+v", created)
	}
	if _, err := tweets.FindByID(req.Context(), created.ID); err != nil {
		t.Fatalf("expected tweet persisted: %v", err)
	}
}

func TestTweetHandlerCreateEmptyContent(t *testing.T) {
	handler, _ := newTweetHandler()

	req := jsonRequest(http.MethodPost, "/api/v1/tweets", `{"content":" "}`)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestTweetHandlerUpdate(t *testing.T) {
	handler, tweets := newTweetHandler()
	tweet := models.Tweet{ID: models.NewID(), OwnerID: "owner-1", Content: "draft"}
	if err := tweets.Create(context.Background(), tweet); err != nil {
		t.Fatalf("seed tweet: %v", err)
	}

	req := jsonRequest(http.MethodPatch, "/api/v1/tweets/"+tweet.ID, `{"content":"final"}`)
	req.SetPathValue("tweetId", tweet.ID)
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	updated, err := tweets.FindByID(req.Context(), tweet.ID)
	if err != nil {
		t.Fatalf("find tweet: %v", err)
	}
	if updated.Content != "final" {
		t.Fatalf("expected updated content, got %q", updated.Content)
	}
}

func TestTweetHandlerDeleteOwnership(t *testing.T) {
	handler, tweets := newTweetHandler()
	tweet := models.Tweet{ID: models.NewID(), OwnerID: "owner-1", Content: "mine"}
	if err := tweets.Create(context.Background(), tweet); err != nil {
		t.Fatalf("seed tweet: %v", err)
	}

	req := pathRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, "tweetId", tweet.ID)
	req = req.WithContext(WithActor(req.Context(), "intruder"))
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if _, err := tweets.FindByID(req.Context(), tweet.ID); err != nil {
		t.Fatalf("expected tweet untouched: %v", err)
	}

	req = pathRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, "tweetId", tweet.ID)
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec = httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if _, err := tweets.FindByID(req.Context(), tweet.ID); err == nil {
		t.Fatal("expected tweet to be deleted")
	}
}

func TestTweetHandlerListByUserInvalidID(t *testing.T) {
	handler, _ := newTweetHandler()

	req := pathRequest(http.MethodGet, "/api/v1/users/garbage/tweets", "userId", "garbage")
	rec := httptest.NewRecorder()

	handler.ListByUser(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}
