package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/clipstream/backend/internal/models"
)

// PlaylistHandler implements playlist CRUD and membership management.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Views     ViewMaterializer
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.Description == "" {
		respondError(ctx, w, http.StatusBadRequest, "name and description are required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          models.NewID(),
		OwnerID:     actor,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondFailure(ctx, w, err, "failed to create playlist")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// GetByID handles GET /api/v1/playlists/{playlistId}, returning the playlist
// with its member videos in insertion order.
func (h PlaylistHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID := r.PathValue("playlistId")
	if !models.IsValidID(playlistID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	playlist, err := h.Views.PlaylistByID(ctx, playlistID)
	if err != nil {
		respondFailure(ctx, w, err, "playlist does not exist")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// ListByUser handles GET /api/v1/users/{userId}/playlists.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if !models.IsValidID(userID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid user id")
		return
	}

	playlists, err := h.Views.UserPlaylists(ctx, userID)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load playlists")
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	playlist, ok := h.ownedPlaylist(w, r, actor)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" && req.Description == "" {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.Name != "" {
		playlist.Name = req.Name
	}
	if req.Description != "" {
		playlist.Description = req.Description
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondFailure(ctx, w, err, "failed to update playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	playlist, ok := h.ownedPlaylist(w, r, actor)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondFailure(ctx, w, err, "failed to delete playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "playlist deleted successfully")
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId}.
// Adding a video that is already a member leaves the playlist unchanged.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	playlist, ok := h.ownedPlaylist(w, r, actor)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondFailure(ctx, w, err, "video does not exist")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondFailure(ctx, w, err, "failed to add video to playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "video added to playlist")
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	playlist, ok := h.ownedPlaylist(w, r, actor)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		respondFailure(ctx, w, err, "failed to remove video from playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "video removed from playlist")
}

// ownedPlaylist loads the playlist from the path and enforces ownership,
// writing the failure response itself when the check fails.
func (h PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request, actor string) (models.Playlist, bool) {
	ctx := r.Context()

	playlistID := r.PathValue("playlistId")
	if !models.IsValidID(playlistID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid playlist id")
		return models.Playlist{}, false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondFailure(ctx, w, err, "playlist does not exist")
		return models.Playlist{}, false
	}
	if playlist.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can modify this playlist")
		return models.Playlist{}, false
	}

	return playlist, true
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
