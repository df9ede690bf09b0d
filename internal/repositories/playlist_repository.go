package repositories

import (
	"context"

	"github.com/clipstream/backend/internal/models"
)

// PlaylistRepository defines data access for playlists and their membership.
// Membership has set semantics on add; stored order is preserved on read.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// HistoryRepository defines data access for per-user watch history.
type HistoryRepository interface {
	Record(ctx context.Context, entry models.WatchEntry) error
}
