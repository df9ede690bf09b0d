package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/clipstream/backend/internal/models"
)

// CommentHandler implements comment CRUD under a video plus the paginated
// comment listing.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Views    ViewMaterializer
	NowFunc  func() time.Time
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/videos/{videoId}/comments.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondFailure(ctx, w, err, "video does not exist")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        models.NewID(),
		VideoID:   videoID,
		OwnerID:   actor,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondFailure(ctx, w, err, "failed to add comment")
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// List handles GET /api/v1/videos/{videoId}/comments with page/limit
// parameters.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondFailure(ctx, w, err, "video does not exist")
		return
	}

	query := r.URL.Query()
	page := queryInt(query.Get("page"), 1)
	limit := queryInt(query.Get("limit"), 10)

	comments, err := h.Views.Comments(ctx, videoID, page, limit)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load comments")
		return
	}

	respondData(ctx, w, http.StatusOK, comments, "comments fetched successfully")
}

// Update handles PATCH /api/v1/comments/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	commentID := r.PathValue("commentId")
	if !models.IsValidID(commentID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondFailure(ctx, w, err, "comment does not exist")
		return
	}
	if comment.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can edit this comment")
		return
	}

	comment.Content = req.Content
	comment.UpdatedAt = h.now()
	if err := h.Comments.Update(ctx, comment); err != nil {
		respondFailure(ctx, w, err, "failed to update comment")
		return
	}

	respondData(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	commentID := r.PathValue("commentId")
	if !models.IsValidID(commentID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid comment id")
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondFailure(ctx, w, err, "comment does not exist")
		return
	}
	if comment.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can delete this comment")
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondFailure(ctx, w, err, "failed to delete comment")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "comment deleted successfully")
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
