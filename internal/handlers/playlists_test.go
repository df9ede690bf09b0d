package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipstream/backend/internal/models"
)

func newPlaylistHandler() (PlaylistHandler, *inMemoryPlaylistStore, *inMemoryVideoStore) {
	playlists := newInMemoryPlaylistStore()
	videos := newInMemoryVideoStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: videos, Views: stubMaterializer{}}
	return handler, playlists, videos
}

func seedPlaylist(t *testing.T, store *inMemoryPlaylistStore, ownerID string) models.Playlist {
	t.Helper()
	playlist := models.Playlist{
		ID:          models.NewID(),
		OwnerID:     ownerID,
		Name:        "Favorites",
		Description: "The good ones.",
	}
	if err := store.Create(context.Background(), playlist); err != nil {
		t.Fatalf("seed playlist: %v", err)
	}
	return playlist
}

func TestPlaylistHandlerCreate(t *testing.T) {
	handler, playlists, _ := newPlaylistHandler()

	body, _ := json.Marshal(playlistRequest{Name: "Favorites", Description: "The good ones."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if len(playlists.playlists) != 1 {
		t.Fatalf("expected one playlist got %d", len(playlists.playlists))
	}
}

func TestPlaylistHandlerCreateValidation(t *testing.T) {
	handler, _, _ := newPlaylistHandler()

	body, _ := json.Marshal(playlistRequest{Name: "", Description: ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPlaylistHandlerAddVideo(t *testing.T) {
	handler, playlists, videos := newPlaylistHandler()
	playlist := seedPlaylist(t, playlists, "owner-1")
	video := seedVideo(t, videos, "someone-else", true)

	req := pathRequest(http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/videos/"+video.ID, "playlistId", playlist.ID)
	req.SetPathValue("videoId", video.ID)
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, err := playlists.FindByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	if len(stored.VideoIDs) != 1 || stored.VideoIDs[0] != video.ID {
		t.Fatalf("expected video in playlist, got %v", stored.VideoIDs)
	}

	// Adding the same video again leaves the playlist unchanged.
	req = pathRequest(http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/videos/"+video.ID, "playlistId", playlist.ID)
	req.SetPathValue("videoId", video.ID)
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec = httptest.NewRecorder()
	handler.AddVideo(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected idempotent add, got %d", rec.Code)
	}
	stored, _ = playlists.FindByID(context.Background(), playlist.ID)
	if len(stored.VideoIDs) != 1 {
		t.Fatalf("expected single membership, got %v", stored.VideoIDs)
	}
}

func TestPlaylistHandlerAddVideoMissingVideo(t *testing.T) {
	handler, playlists, _ := newPlaylistHandler()
	playlist := seedPlaylist(t, playlists, "owner-1")
	missing := models.NewID()

	req := pathRequest(http.MethodPost, "/api/v1/playlists/"+playlist.ID+"/videos/"+missing, "playlistId", playlist.ID)
	req.SetPathValue("videoId", missing)
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestPlaylistHandlerOwnershipEnforced(t *testing.T) {
	handler, playlists, _ := newPlaylistHandler()
	playlist := seedPlaylist(t, playlists, "owner-1")

	body, _ := json.Marshal(playlistRequest{Name: "Hijacked"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/"+playlist.ID, bytes.NewReader(body))
	req.SetPathValue("playlistId", playlist.ID)
	req = req.WithContext(WithActor(req.Context(), "intruder"))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
}
