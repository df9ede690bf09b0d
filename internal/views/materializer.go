// Package views assembles denormalized, client-ready read models by joining
// the normalized entities: channel profiles with subscription counters,
// watch-history and liked-video feeds with owner projections, playlists with
// embedded video detail, and paginated video/comment feeds. Every operation
// is read-only.
package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// Materializer issues the join pipelines against PostgreSQL.
type Materializer struct {
	pool db.Pool
}

// NewMaterializer constructs a materializer over the provided pool.
func NewMaterializer(pool db.Pool) *Materializer {
	return &Materializer{pool: pool}
}

// ChannelProfile resolves a channel by case-insensitive username and
// decorates it with subscriber counts and the viewer's subscription state.
// viewerID may be empty for anonymous viewers.
func (m *Materializer) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return models.ChannelProfile{}, repositories.ErrNotFound
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.email, u.avatar_url, u.cover_url,
               (SELECT COUNT(*) FROM subscriptions WHERE channel_id = u.id) AS subscribers_count,
               (SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = u.id) AS subscribed_to_count,
               EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = u.id AND subscriber_id = $2) AS is_subscribed
        FROM users u
        WHERE u.username = $1
    `, strings.ToLower(strings.TrimSpace(username)), viewerID)

	var profile models.ChannelProfile
	if err := row.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.Email,
		&profile.Avatar, &profile.CoverImage,
		&profile.SubscribersCount, &profile.SubscribedToCount, &profile.IsSubscribed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, repositories.ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory resolves the user's watch history to enriched video
// summaries, most recent first. Entries whose video has since been deleted
// are dropped.
func (m *Materializer) WatchHistory(ctx context.Context, userID string) ([]models.VideoSummary, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration_seconds, v.views, v.is_published, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1
        ORDER BY h.watched_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	return scanVideoSummaries(rows)
}

// LikedVideos returns the videos the user has liked, newest like first.
// An empty result is reported as not found; callers treat "no likes" the
// same as a failed lookup.
func (m *Materializer) LikedVideos(ctx context.Context, userID string) ([]models.VideoSummary, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration_seconds, v.views, v.is_published, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	videos, err := scanVideoSummaries(rows)
	if err != nil {
		return nil, err
	}

	if len(videos) == 0 {
		return nil, repositories.ErrNotFound
	}

	return videos, nil
}

// PlaylistByID expands a playlist into its view: owner projection plus
// member videos in stored order.
func (m *Materializer) PlaylistByID(ctx context.Context, id string) (models.PlaylistView, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return models.PlaylistView{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT p.id, p.name, p.description, p.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1
    `, id)

	var view models.PlaylistView
	if err := row.Scan(&view.ID, &view.Name, &view.Description, &view.UpdatedAt,
		&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.Avatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PlaylistView{}, repositories.ErrNotFound
		}
		return models.PlaylistView{}, fmt.Errorf("select playlist: %w", err)
	}

	videos, err := m.playlistVideos(ctx, id)
	if err != nil {
		return models.PlaylistView{}, err
	}
	view.Videos = videos

	return view, nil
}

// UserPlaylists expands every playlist owned by the user, most recently
// updated first, members in insertion order.
func (m *Materializer) UserPlaylists(ctx context.Context, userID string) ([]models.PlaylistView, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.owner_id = $1
        ORDER BY p.updated_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}

	var views []models.PlaylistView
	for rows.Next() {
		var view models.PlaylistView
		if err := rows.Scan(&view.ID, &view.Name, &view.Description, &view.UpdatedAt,
			&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.Avatar); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	rows.Close()

	for i := range views {
		videos, err := m.playlistVideos(ctx, views[i].ID)
		if err != nil {
			return nil, err
		}
		views[i].Videos = videos
	}

	return views, nil
}

func (m *Materializer) playlistVideos(ctx context.Context, playlistID string) ([]models.PlaylistVideo, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail_url, v.duration_seconds, v.views, v.is_published, v.created_at
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position
    `, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	var videos []models.PlaylistVideo
	for rows.Next() {
		var video models.PlaylistVideo
		if err := rows.Scan(&video.ID, &video.Title, &video.Thumbnail, &video.Duration,
			&video.Views, &video.IsPublished, &video.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return videos, nil
}

// UserTweets returns the tweets posted by a user, newest first, enriched
// with the author projection.
func (m *Materializer) UserTweets(ctx context.Context, userID string) ([]models.TweetView, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT t.id, t.content, t.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        WHERE t.owner_id = $1
        ORDER BY t.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	var tweets []models.TweetView
	for rows.Next() {
		var tweet models.TweetView
		if err := rows.Scan(&tweet.ID, &tweet.Content, &tweet.CreatedAt,
			&tweet.Owner.ID, &tweet.Owner.Username, &tweet.Owner.FullName, &tweet.Owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}

	return tweets, nil
}

func scanVideoSummaries(rows pgx.Rows) ([]models.VideoSummary, error) {
	var videos []models.VideoSummary
	for rows.Next() {
		var video models.VideoSummary
		if err := rows.Scan(&video.ID, &video.Title, &video.Description, &video.Thumbnail,
			&video.Duration, &video.Views, &video.IsPublished, &video.CreatedAt,
			&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName, &video.Owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan video summary: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video summaries: %w", err)
	}

	return videos, nil
}
