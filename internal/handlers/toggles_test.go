package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/social"
)

func TestLikeHandlerToggle(t *testing.T) {
	videoID := models.NewID()

	handler := LikeHandler{Social: stubToggleEngine{state: social.StateAdded}}
	req := pathRequest(http.MethodPost, "/api/v1/likes/videos/"+videoID, "videoId", videoID)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var resp likeResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Liked {
		t.Fatal("expected liked=true for added state")
	}

	handler = LikeHandler{Social: stubToggleEngine{state: social.StateRemoved}}
	req = pathRequest(http.MethodPost, "/api/v1/likes/videos/"+videoID, "videoId", videoID)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec = httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Liked {
		t.Fatal("expected liked=false for removed state")
	}
}

func TestLikeHandlerToggleFailureMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid target", social.ErrInvalidTarget, http.StatusBadRequest},
		{"missing target", social.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := LikeHandler{Social: stubToggleEngine{err: tc.err}}
			videoID := models.NewID()
			req := pathRequest(http.MethodPost, "/api/v1/likes/videos/"+videoID, "videoId", videoID)
			req = req.WithContext(WithActor(req.Context(), "actor-1"))
			rec := httptest.NewRecorder()

			handler.ToggleVideo(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestChannelHandlerToggleSubscription(t *testing.T) {
	channelID := models.NewID()

	handler := ChannelHandler{Social: stubToggleEngine{state: social.StateAdded}}
	req := pathRequest(http.MethodPost, "/api/v1/subscriptions/"+channelID, "channelId", channelID)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.ToggleSubscription(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var resp toggleResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Subscribed {
		t.Fatal("expected subscribed=true for added state")
	}
}

func TestChannelHandlerToggleSubscriptionSelf(t *testing.T) {
	channelID := models.NewID()

	handler := ChannelHandler{Social: stubToggleEngine{err: social.ErrSelfSubscription}}
	req := pathRequest(http.MethodPost, "/api/v1/subscriptions/"+channelID, "channelId", channelID)
	req = req.WithContext(WithActor(req.Context(), channelID))
	rec := httptest.NewRecorder()

	handler.ToggleSubscription(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChannelHandlerToggleSubscriptionInvalidID(t *testing.T) {
	handler := ChannelHandler{Social: stubToggleEngine{}}
	req := pathRequest(http.MethodPost, "/api/v1/subscriptions/garbage", "channelId", "garbage")
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.ToggleSubscription(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}
