package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users     UserStore
	Videos    VideoStore
	Comments  CommentStore
	Tweets    TweetStore
	Playlists PlaylistStore
	History   HistoryStore
	Sessions  SessionManager
	Social    ToggleEngine
	Views     ViewMaterializer
	Media     MediaUploader
	Prober    MediaProber
	Cleaner   MediaCleaner

	AuthLimiter RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Media: deps.Media, Limiter: deps.AuthLimiter}
	channels := ChannelHandler{Views: deps.Views, Social: deps.Social}
	videos := VideoHandler{Videos: deps.Videos, History: deps.History, Views: deps.Views, Media: deps.Media, Prober: deps.Prober, Cleaner: deps.Cleaner}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Views: deps.Views}
	tweets := TweetHandler{Tweets: deps.Tweets, Views: deps.Views}
	likes := LikeHandler{Social: deps.Social, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Views: deps.Views}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(deps.Sessions, next)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", auth.Register)
	mux.HandleFunc("POST /api/v1/users/login", auth.Login)
	mux.HandleFunc("POST /api/v1/users/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/v1/users/logout", authed(auth.Logout))
	mux.HandleFunc("POST /api/v1/users/change-password", authed(auth.ChangePassword))
	mux.HandleFunc("GET /api/v1/users/me", authed(auth.CurrentUser))
	mux.HandleFunc("PATCH /api/v1/users/me", authed(auth.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/me/avatar", authed(auth.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/me/cover", authed(auth.UpdateCover))
	mux.HandleFunc("GET /api/v1/users/history", authed(channels.WatchHistory))
	mux.HandleFunc("GET /api/v1/users/{userId}/tweets", tweets.ListByUser)
	mux.HandleFunc("GET /api/v1/users/{userId}/playlists", playlists.ListByUser)

	mux.HandleFunc("GET /api/v1/channels/{username}", OptionalAuth(deps.Sessions, channels.Profile))
	mux.HandleFunc("GET /api/v1/channels/{channelId}/subscribers", channels.Subscribers)
	mux.HandleFunc("POST /api/v1/subscriptions/{channelId}", authed(channels.ToggleSubscription))
	mux.HandleFunc("GET /api/v1/subscriptions", authed(channels.SubscribedChannels))

	mux.HandleFunc("GET /api/v1/videos", videos.Feed)
	mux.HandleFunc("POST /api/v1/videos", authed(videos.Publish))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", OptionalAuth(deps.Sessions, videos.GetByID))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", authed(videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", authed(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}/toggle-publish", authed(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/videos/{videoId}/comments", comments.List)
	mux.HandleFunc("POST /api/v1/videos/{videoId}/comments", authed(comments.Create))
	mux.HandleFunc("PATCH /api/v1/comments/{commentId}", authed(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{commentId}", authed(comments.Delete))

	mux.HandleFunc("POST /api/v1/tweets", authed(tweets.Create))
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", authed(tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", authed(tweets.Delete))

	mux.HandleFunc("POST /api/v1/likes/videos/{videoId}", authed(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/comments/{commentId}", authed(likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/tweets/{tweetId}", authed(likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", authed(likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/playlists", authed(playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", playlists.GetByID)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}", authed(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}", authed(playlists.Delete))
	mux.HandleFunc("POST /api/v1/playlists/{playlistId}/videos/{videoId}", authed(playlists.AddVideo))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", authed(playlists.RemoveVideo))
}
