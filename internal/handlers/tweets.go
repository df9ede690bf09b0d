package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/clipstream/backend/internal/models"
)

// TweetHandler implements the short text post lifecycle.
type TweetHandler struct {
	Tweets  TweetStore
	Views   ViewMaterializer
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        models.NewID(),
		OwnerID:   actor,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondFailure(ctx, w, err, "failed to create tweet")
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// ListByUser handles GET /api/v1/users/{userId}/tweets.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if !models.IsValidID(userID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid user id")
		return
	}

	tweets, err := h.Views.UserTweets(ctx, userID)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load tweets")
		return
	}

	respondData(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	tweetID := r.PathValue("tweetId")
	if !models.IsValidID(tweetID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid tweet id")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondFailure(ctx, w, err, "tweet does not exist")
		return
	}
	if tweet.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can edit this tweet")
		return
	}

	tweet.Content = req.Content
	tweet.UpdatedAt = h.now()
	if err := h.Tweets.Update(ctx, tweet); err != nil {
		respondFailure(ctx, w, err, "failed to update tweet")
		return
	}

	respondData(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	tweetID := r.PathValue("tweetId")
	if !models.IsValidID(tweetID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid tweet id")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondFailure(ctx, w, err, "tweet does not exist")
		return
	}
	if tweet.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can delete this tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		respondFailure(ctx, w, err, "failed to delete tweet")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "tweet deleted successfully")
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
