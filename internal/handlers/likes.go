package handlers

import (
	"net/http"

	"github.com/clipstream/backend/internal/social"
)

// LikeHandler implements the three like toggles and the liked-videos view.
type LikeHandler struct {
	Social ToggleEngine
	Views  ViewMaterializer
}

type likeResponse struct {
	Liked bool `json:"liked"`
}

// ToggleVideo handles POST /api/v1/likes/videos/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, social.VideoTarget(r.PathValue("videoId")))
}

// ToggleComment handles POST /api/v1/likes/comments/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, social.CommentTarget(r.PathValue("commentId")))
}

// ToggleTweet handles POST /api/v1/likes/tweets/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, social.TweetTarget(r.PathValue("tweetId")))
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target social.Target) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	state, _, err := h.Social.ToggleLike(ctx, actor, target)
	if err != nil {
		respondFailure(ctx, w, err, "unable to toggle like")
		return
	}

	message := "like removed"
	if state == social.StateAdded {
		message = "liked successfully"
	}
	respondData(ctx, w, http.StatusOK, likeResponse{Liked: state == social.StateAdded}, message)
}

// LikedVideos handles GET /api/v1/likes/videos. A user with no liked videos
// gets a not-found failure rather than an empty list.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Views.LikedVideos(ctx, ActorFromContext(ctx))
	if err != nil {
		respondFailure(ctx, w, err, "no liked videos found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos fetched successfully")
}
