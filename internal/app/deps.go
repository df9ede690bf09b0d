package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/config"
	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/handlers"
	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/social"
	"github.com/clipstream/backend/internal/storage"
	"github.com/clipstream/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned shutdown function drains the media cleaner.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	store, err := storage.NewS3Storage(ctx, cfg.ObjectStore, logger)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure media storage: %w", err)
	}

	ffprobe := media.NewFFProbeProvider(cfg.FFProbePath, cfg.FFProbeTimeout)
	prober := media.NewCachingProber(ffprobe, cfg.MetadataCacheTTL)
	cleaner := media.NewCleaner(store, media.CleanerConfig{QueueSize: 64, Workers: 2}, logger)

	sessionStore := repositories.NewPostgresSessionStore(pool)
	likeStore := repositories.NewPostgresSocialRepository(pool)
	subscriptionStore := repositories.NewPostgresSubscriptionRepository(pool)
	verifier := repositories.NewPostgresTargetVerifier(pool)

	deps := handlers.Dependencies{
		Users:     repositories.NewPostgresUserRepository(pool),
		Videos:    repositories.NewPostgresVideoRepository(pool),
		Comments:  repositories.NewPostgresCommentRepository(pool),
		Tweets:    repositories.NewPostgresTweetRepository(pool),
		Playlists: repositories.NewPostgresPlaylistRepository(pool),
		History:   repositories.NewPostgresHistoryRepository(pool),
		Sessions: auth.NewManager(
			cfg.AccessTokenSecret,
			cfg.RefreshTokenSecret,
			cfg.AccessTokenTTL,
			cfg.RefreshTokenTTL,
			sessionStore,
		),
		Social:  social.NewEngine(likeStore, subscriptionStore, verifier),
		Views:   views.NewMaterializer(pool),
		Media:   store,
		Prober:  prober,
		Cleaner: cleaner,

		AuthLimiter: middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}

	return deps, cleaner.Shutdown, nil
}
