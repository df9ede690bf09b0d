package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/views"
)

// VideoHandler implements the video lifecycle: publish, fetch, update,
// delete, publish toggling, and the paginated feed.
type VideoHandler struct {
	Videos  VideoStore
	History HistoryStore
	Views   ViewMaterializer
	Media   MediaUploader
	Prober  MediaProber
	Cleaner MediaCleaner
	NowFunc func() time.Time
}

// Publish handles POST /api/v1/videos. The request is a multipart form with
// the video file, a thumbnail, and the title/description fields. The video
// is spooled to disk first so duration can be probed before upload.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := ActorFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	file, header, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "upload-*"+safeExt(header.Filename))
	if err != nil {
		logger.Error("failed to spool upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process video")
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		logger.Error("failed to spool upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process video")
		return
	}

	var duration float64
	if h.Prober != nil {
		meta, err := h.Prober.Probe(ctx, tmp.Name())
		if err != nil {
			logger.Warn("duration probe failed, storing zero", "error", err)
		} else {
			duration = meta.DurationSeconds
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		logger.Error("failed to rewind spooled upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process video")
		return
	}

	videoID := models.NewID()
	videoURL, err := h.Media.Save(ctx, "videos/"+videoID+safeExt(header.Filename), tmp)
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to upload video")
		return
	}

	thumbnailURL, err := storeUpload(r, h.Media, "thumbnail", "thumbnails")
	if err != nil {
		h.enqueueCleanup(ctx, videoURL)
		if errors.Is(err, errFileMissing) {
			respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
			return
		}
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to upload thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           videoID,
		OwnerID:      actor,
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.enqueueCleanup(ctx, videoURL)
		h.enqueueCleanup(ctx, thumbnailURL)
		logger.Error("failed to persist video", "error", err)
		respondFailure(ctx, w, err, "failed to publish video")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published successfully")
}

// GetByID handles GET /api/v1/videos/{videoId}. Fetching bumps the view
// counter and, for authenticated viewers, records a watch-history entry.
// Unpublished videos are visible only to their owner.
func (h VideoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := ActorFromContext(ctx)

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondFailure(ctx, w, err, "video does not exist")
		return
	}

	if !video.IsPublished && video.OwnerID != actor {
		respondError(ctx, w, http.StatusNotFound, "video does not exist")
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("failed to increment views", "error", err, "videoId", videoID)
	} else {
		video.Views++
	}

	if actor != "" && h.History != nil {
		entry := models.WatchEntry{ID: models.NewID(), UserID: actor, VideoID: videoID, WatchedAt: h.now()}
		if err := h.History.Record(ctx, entry); err != nil {
			logger.Warn("failed to record watch history", "error", err, "videoId", videoID)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId}. Accepts a multipart form
// with optional title, description, and thumbnail; the replaced thumbnail
// is scheduled for deletion.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondFailure(ctx, w, err, "video does not exist")
		return
	}
	if video.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can update this video")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	oldThumbnail := ""
	thumbnailURL, err := storeUpload(r, h.Media, "thumbnail", "thumbnails")
	switch {
	case err == nil:
		oldThumbnail = video.ThumbnailURL
		video.ThumbnailURL = thumbnailURL
	case errors.Is(err, errFileMissing):
		// keep the existing thumbnail
	default:
		logging.FromContext(ctx).Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to upload thumbnail")
		return
	}

	if title == "" && description == "" && oldThumbnail == "" {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondFailure(ctx, w, err, "failed to update video")
		return
	}

	if oldThumbnail != "" {
		h.enqueueCleanup(ctx, oldThumbnail)
	}

	respondData(ctx, w, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}. The stored objects are
// cleaned up best-effort after the record is gone.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondFailure(ctx, w, err, "video does not exist")
		return
	}
	if video.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can delete this video")
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondFailure(ctx, w, err, "failed to delete video")
		return
	}

	h.enqueueCleanup(ctx, video.VideoURL)
	h.enqueueCleanup(ctx, video.ThumbnailURL)

	respondData(ctx, w, http.StatusOK, struct{}{}, "video deleted successfully")
}

type publishStatusResponse struct {
	IsPublished bool `json:"isPublished"`
}

// TogglePublish handles PATCH /api/v1/videos/{videoId}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	videoID := r.PathValue("videoId")
	if !models.IsValidID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondFailure(ctx, w, err, "video does not exist")
		return
	}
	if video.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner can change publish status")
		return
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondFailure(ctx, w, err, "failed to toggle publish status")
		return
	}

	respondData(ctx, w, http.StatusOK, publishStatusResponse{IsPublished: video.IsPublished}, "publish status toggled")
}

// Feed handles GET /api/v1/videos: a paginated, filterable, sortable feed.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	page := queryInt(query.Get("page"), 1)
	limit := queryInt(query.Get("limit"), 10)

	filter := views.FeedFilter{Query: strings.TrimSpace(query.Get("query"))}
	if ownerID := strings.TrimSpace(query.Get("userId")); ownerID != "" {
		if !models.IsValidID(ownerID) {
			respondError(ctx, w, http.StatusBadRequest, "invalid user id")
			return
		}
		filter.OwnerID = ownerID
	}

	sort := views.FeedSort{
		Field:     strings.TrimSpace(query.Get("sortBy")),
		Ascending: strings.EqualFold(query.Get("sortType"), "asc"),
	}

	feed, err := h.Views.VideoFeed(ctx, filter, sort, page, limit)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load video feed")
		return
	}

	respondData(ctx, w, http.StatusOK, feed, "videos fetched successfully")
}

func (h VideoHandler) enqueueCleanup(ctx context.Context, url string) {
	if h.Cleaner == nil || url == "" {
		return
	}
	if err := h.Cleaner.Enqueue(ctx, url); err != nil {
		logging.FromContext(ctx).Warn("failed to enqueue media cleanup", "error", err, "url", url)
	}
}

// queryInt parses a positive integer query parameter, falling back to a
// default on absence or garbage.
func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
