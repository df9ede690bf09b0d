package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipstream/backend/internal/models"
)

// FeedFilter narrows the video feed to a free-text match against title and
// description, or to a single owner. Query takes precedence when both are set.
type FeedFilter struct {
	Query   string
	OwnerID string
}

// FeedSort names the column and direction applied before pagination.
type FeedSort struct {
	Field     string
	Ascending bool
}

// feedSortColumns whitelists the sortable columns; anything else falls back
// to created_at.
var feedSortColumns = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration_seconds",
	"title":     "title",
}

// VideoFeed returns a page of enriched video summaries. Ordering is fixed
// by the sort before LIMIT/OFFSET is applied, so paging never reorders.
func (m *Materializer) VideoFeed(ctx context.Context, filter FeedFilter, sort FeedSort, page, limit int) (models.Page[models.VideoSummary], error) {
	page, limit = models.ClampPaging(page, limit)

	column, ok := feedSortColumns[sort.Field]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if sort.Ascending {
		direction = "ASC"
	}

	where := ""
	args := []any{limit, (page - 1) * limit}
	if query := strings.TrimSpace(filter.Query); query != "" {
		where = `WHERE v.title ILIKE '%' || $3 || '%' OR v.description ILIKE '%' || $3 || '%'`
		args = append(args, query)
	} else if filter.OwnerID != "" {
		where = `WHERE v.owner_id = $3`
		args = append(args, filter.OwnerID)
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return models.Page[models.VideoSummary]{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration_seconds, v.views, v.is_published, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url,
               COUNT(*) OVER() AS total
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        %s
        ORDER BY v.%s %s
        LIMIT $1 OFFSET $2
    `, where, column, direction), args...)
	if err != nil {
		return models.Page[models.VideoSummary]{}, fmt.Errorf("query video feed: %w", err)
	}
	defer rows.Close()

	var (
		videos []models.VideoSummary
		total  int64
	)
	for rows.Next() {
		var video models.VideoSummary
		if err := rows.Scan(&video.ID, &video.Title, &video.Description, &video.Thumbnail,
			&video.Duration, &video.Views, &video.IsPublished, &video.CreatedAt,
			&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName, &video.Owner.Avatar,
			&total); err != nil {
			return models.Page[models.VideoSummary]{}, fmt.Errorf("scan video feed row: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return models.Page[models.VideoSummary]{}, fmt.Errorf("iterate video feed: %w", err)
	}

	if total == 0 {
		total, err = m.countFeed(ctx, where, args[2:])
		if err != nil {
			return models.Page[models.VideoSummary]{}, err
		}
	}

	return models.NewPage(videos, page, limit, total), nil
}

// countFeed covers pages past the end of the result set, where the window
// total never materializes.
func (m *Materializer) countFeed(ctx context.Context, where string, filterArgs []any) (int64, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	query := `SELECT COUNT(*) FROM videos v ` + strings.ReplaceAll(where, "$3", "$1")

	var total int64
	if err := conn.QueryRow(ctx, query, filterArgs...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count video feed: %w", err)
	}

	return total, nil
}

// Comments returns a page of a video's comments, newest first, each item
// enriched with the author's username and avatar.
func (m *Materializer) Comments(ctx context.Context, videoID string, page, limit int) (models.Page[models.CommentView], error) {
	page, limit = models.ClampPaging(page, limit)

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return models.Page[models.CommentView]{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.content, c.created_at,
               u.id, u.username, u.full_name, u.avatar_url,
               COUNT(*) OVER() AS total
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        LIMIT $2 OFFSET $3
    `, videoID, limit, (page-1)*limit)
	if err != nil {
		return models.Page[models.CommentView]{}, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var (
		comments []models.CommentView
		total    int64
	)
	for rows.Next() {
		var comment models.CommentView
		if err := rows.Scan(&comment.ID, &comment.Content, &comment.CreatedAt,
			&comment.Owner.ID, &comment.Owner.Username, &comment.Owner.FullName, &comment.Owner.Avatar,
			&total); err != nil {
			return models.Page[models.CommentView]{}, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return models.Page[models.CommentView]{}, fmt.Errorf("iterate comments: %w", err)
	}

	if total == 0 {
		if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
			return models.Page[models.CommentView]{}, fmt.Errorf("count comments: %w", err)
		}
	}

	return models.NewPage(comments, page, limit, total), nil
}
