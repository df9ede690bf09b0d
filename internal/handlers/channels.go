package handlers

import (
	"net/http"
	"strings"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/social"
)

// ChannelHandler serves channel profiles, subscription toggles, and the
// subscriber listings derived from them.
type ChannelHandler struct {
	Views  ViewMaterializer
	Social ToggleEngine
}

// Profile handles GET /api/v1/channels/{username}. Anonymous viewers get
// isSubscribed=false; authenticated viewers get their own relation.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Views.ChannelProfile(ctx, username, ActorFromContext(ctx))
	if err != nil {
		respondFailure(ctx, w, err, "channel does not exist")
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile fetched successfully")
}

// WatchHistory handles GET /api/v1/users/history. Entries whose video has
// since been deleted are dropped rather than surfaced as holes.
func (h ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	history, err := h.Views.WatchHistory(ctx, ActorFromContext(ctx))
	if err != nil {
		respondFailure(ctx, w, err, "unable to load watch history")
		return
	}

	respondData(ctx, w, http.StatusOK, history, "watch history fetched successfully")
}

type toggleResponse struct {
	Subscribed bool `json:"subscribed"`
}

// ToggleSubscription handles POST /api/v1/subscriptions/{channelId}.
func (h ChannelHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	channelID := r.PathValue("channelId")
	if !models.IsValidID(channelID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	state, _, err := h.Social.ToggleSubscription(ctx, actor, channelID)
	if err != nil {
		respondFailure(ctx, w, err, "unable to toggle subscription")
		return
	}

	message := "unsubscribed successfully"
	if state == social.StateAdded {
		message = "subscribed successfully"
	}
	respondData(ctx, w, http.StatusOK, toggleResponse{Subscribed: state == social.StateAdded}, message)
}

// Subscribers handles GET /api/v1/channels/{channelId}/subscribers.
func (h ChannelHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID := r.PathValue("channelId")
	if !models.IsValidID(channelID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid channel id")
		return
	}

	subscribers, err := h.Social.ChannelSubscribers(ctx, channelID)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load subscribers")
		return
	}

	respondData(ctx, w, http.StatusOK, subscribers, "subscribers fetched successfully")
}

// SubscribedChannels handles GET /api/v1/subscriptions, listing the channels
// the actor subscribes to.
func (h ChannelHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channels, err := h.Social.SubscribedChannels(ctx, ActorFromContext(ctx))
	if err != nil {
		respondFailure(ctx, w, err, "unable to load subscribed channels")
		return
	}

	respondData(ctx, w, http.StatusOK, channels, "subscribed channels fetched successfully")
}
