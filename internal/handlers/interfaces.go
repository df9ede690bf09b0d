package handlers

import (
	"context"
	"io"

	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/social"
	"github.com/clipstream/backend/internal/views"
)

// UserStore captures the persistence operations required by the auth and
// profile handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmailOrUsername(ctx context.Context, identifier string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// SessionManager issues, refreshes, verifies, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	VerifyAccess(token string) (string, error)
	RevokeUser(ctx context.Context, userID string) error
}

// VideoStore captures persistence for video records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// CommentStore captures persistence for comment records.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweet records.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}

// PlaylistStore captures persistence for playlists and their membership.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// HistoryStore records watch-history events.
type HistoryStore interface {
	Record(ctx context.Context, entry models.WatchEntry) error
}

// ToggleEngine flips like and subscription relations.
type ToggleEngine interface {
	ToggleLike(ctx context.Context, actorID string, target social.Target) (social.ToggleState, *social.Like, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (social.ToggleState, *models.Subscription, error)
	ChannelSubscribers(ctx context.Context, channelID string) ([]models.Owner, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.Owner, error)
}

// ViewMaterializer assembles the denormalized read models.
type ViewMaterializer interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.VideoSummary, error)
	LikedVideos(ctx context.Context, userID string) ([]models.VideoSummary, error)
	PlaylistByID(ctx context.Context, id string) (models.PlaylistView, error)
	UserPlaylists(ctx context.Context, userID string) ([]models.PlaylistView, error)
	UserTweets(ctx context.Context, userID string) ([]models.TweetView, error)
	VideoFeed(ctx context.Context, filter views.FeedFilter, sort views.FeedSort, page, limit int) (models.Page[models.VideoSummary], error)
	Comments(ctx context.Context, videoID string, page, limit int) (models.Page[models.CommentView], error)
}

// MediaUploader stores media objects and returns their public locations.
type MediaUploader interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// MediaProber extracts metadata from an uploaded media file on local disk.
type MediaProber interface {
	Probe(ctx context.Context, path string) (media.Metadata, error)
}

// MediaCleaner schedules best-effort deletion of orphaned media objects.
type MediaCleaner interface {
	Enqueue(ctx context.Context, url string) error
}
