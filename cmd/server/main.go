package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edusocial/edusocial/internal/config"
	"github.com/edusocial/edusocial/internal/database"
	"github.com/edusocial/edusocial/internal/handlers"
	"github.com/edusocial/edusocial/internal/logging"
	"github.com/edusocial/edusocial/internal/middleware"
	"github.com/edusocial/edusocial/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Environment == "development" {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
	}

	logger.Info("Starting EduSocial server...")

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.Database, "migrations"); err != nil {
		return err
	}
	logger.Info("Migrations completed")

	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	var events services.EventPublisher = services.NoopPublisher{}
	if cfg.NATS.Enabled {
		logger.Info("Connecting to NATS", map[string]interface{}{
			"url": cfg.NATS.URL,
		})
		publisher, err := services.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		events = publisher
		logger.Info("Connected to NATS")
	}
	defer events.Close()

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(db.Pool, redisDB.Client)
	notificationService := services.NewNotificationService(dbAdapter, events)
	relationshipService := services.NewRelationshipService(dbAdapter, notificationService)
	followService := services.NewFollowService(dbAdapter)
	academicService := services.NewAcademicService(dbAdapter)
	groupService := services.NewGroupService(dbAdapter, notificationService)
	roomService := services.NewRoomService(dbAdapter, notificationService)
	visibilityService := services.NewVisibilityService(relationshipService, groupService, roomService, followService)
	postService := services.NewPostService(dbAdapter, visibilityService, relationshipService, groupService, roomService)
	feedService := services.NewFeedService(dbAdapter, relationshipService, followService, groupService, roomService)
	commentService := services.NewCommentService(dbAdapter, postService, notificationService)
	reactionService := services.NewReactionService(dbAdapter, postService, notificationService)
	suggestionService := services.NewSuggestionService(dbAdapter)

	// Periodic retention sweep for old notifications.
	cleanupDone := make(chan struct{})
	defer close(cleanupDone)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupDone:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if err := notificationService.CleanupOld(ctx); err != nil {
					logger.Warn("Notification cleanup failed", map[string]interface{}{
						"error": err.Error(),
					})
				}
				cancel()
			}
		}
	}()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, cfg.Server.Secure)
	userHandler := handlers.NewUserHandler(userService, relationshipService)
	relationshipHandler := handlers.NewRelationshipHandler(relationshipService)
	postHandler := handlers.NewPostHandler(postService, reactionService)
	feedHandler := handlers.NewFeedHandler(feedService, userService)
	commentHandler := handlers.NewCommentHandler(commentService)
	groupHandler := handlers.NewGroupHandler(groupService)
	roomHandler := handlers.NewRoomHandler(roomService)
	followHandler := handlers.NewFollowHandler(followService, academicService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	requestLogger := middleware.NewRequestLogger(logger)
	authLimiter := middleware.NewAuthRateLimiter(redisDB.Client)
	apiLimiter := middleware.NewAPIRateLimiter(redisDB.Client)

	requireAuth := authMiddleware.RequireAuth

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", authLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/searchable", requireAuth(http.HandlerFunc(authHandler.UpdateSearchable)))

	// User endpoints
	mux.Handle("GET /api/users/search", requireAuth(http.HandlerFunc(userHandler.Search)))
	mux.Handle("GET /api/users/{username}", requireAuth(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("GET /api/users/{username}/posts", requireAuth(http.HandlerFunc(feedHandler.ProfileFeed)))

	// Relationship endpoints
	mux.Handle("GET /api/relationships", requireAuth(http.HandlerFunc(relationshipHandler.List)))
	mux.Handle("POST /api/relationships/requests", requireAuth(apiLimiter.Limit(http.HandlerFunc(relationshipHandler.SendRequest))))
	mux.Handle("PUT /api/relationships/requests/{id}/accept", requireAuth(http.HandlerFunc(relationshipHandler.AcceptRequest)))
	mux.Handle("DELETE /api/relationships/requests/{id}", requireAuth(http.HandlerFunc(relationshipHandler.CancelRequest)))
	mux.Handle("DELETE /api/relationships/friends/{userID}", requireAuth(http.HandlerFunc(relationshipHandler.Unfriend)))
	mux.Handle("POST /api/relationships/blocks/{userID}", requireAuth(apiLimiter.Limit(http.HandlerFunc(relationshipHandler.Block))))
	mux.Handle("DELETE /api/relationships/blocks/{userID}", requireAuth(http.HandlerFunc(relationshipHandler.Unblock)))

	// Post and feed endpoints
	mux.Handle("POST /api/posts", requireAuth(http.HandlerFunc(postHandler.Create)))
	mux.Handle("GET /api/posts/{id}", requireAuth(http.HandlerFunc(postHandler.Get)))
	mux.Handle("DELETE /api/posts/{id}", requireAuth(http.HandlerFunc(postHandler.Delete)))
	mux.Handle("PUT /api/posts/{id}/archive", requireAuth(http.HandlerFunc(postHandler.SetArchived)))
	mux.Handle("PUT /api/posts/{id}/pin", requireAuth(http.HandlerFunc(postHandler.SetPinned)))
	mux.Handle("POST /api/posts/{id}/like", requireAuth(http.HandlerFunc(postHandler.ToggleLike)))
	mux.Handle("GET /api/feed", requireAuth(http.HandlerFunc(feedHandler.NewsFeed)))
	mux.Handle("GET /api/feed/{kind}/{id}", requireAuth(http.HandlerFunc(feedHandler.TargetFeed)))

	// Comment endpoints
	mux.Handle("POST /api/posts/{id}/comments", requireAuth(http.HandlerFunc(commentHandler.Create)))
	mux.Handle("GET /api/posts/{id}/comments", requireAuth(http.HandlerFunc(commentHandler.List)))
	mux.Handle("DELETE /api/comments/{id}", requireAuth(http.HandlerFunc(commentHandler.Delete)))
	mux.Handle("POST /api/comments/{id}/like", requireAuth(http.HandlerFunc(postHandler.ToggleCommentLike)))

	// Group endpoints
	mux.Handle("POST /api/groups", requireAuth(http.HandlerFunc(groupHandler.Create)))
	mux.Handle("GET /api/groups/{id}", requireAuth(http.HandlerFunc(groupHandler.Get)))
	mux.Handle("POST /api/groups/{id}/join", requireAuth(http.HandlerFunc(groupHandler.Join)))
	mux.Handle("POST /api/groups/{id}/leave", requireAuth(http.HandlerFunc(groupHandler.Leave)))
	mux.Handle("POST /api/groups/{id}/invite", requireAuth(http.HandlerFunc(groupHandler.Invite)))
	mux.Handle("POST /api/groups/{id}/approve", requireAuth(http.HandlerFunc(groupHandler.Approve)))
	mux.Handle("POST /api/groups/{id}/ban", requireAuth(http.HandlerFunc(groupHandler.Ban)))
	mux.Handle("PUT /api/groups/{id}/roles", requireAuth(http.HandlerFunc(groupHandler.ChangeRole)))
	mux.Handle("GET /api/groups/{id}/members", requireAuth(http.HandlerFunc(groupHandler.Members)))

	// Room endpoints
	mux.Handle("POST /api/rooms", requireAuth(http.HandlerFunc(roomHandler.Create)))
	mux.Handle("GET /api/rooms/{id}", requireAuth(http.HandlerFunc(roomHandler.Get)))
	mux.Handle("POST /api/rooms/{id}/members", requireAuth(http.HandlerFunc(roomHandler.AddMember)))
	mux.Handle("DELETE /api/rooms/{id}/members/{userID}", requireAuth(http.HandlerFunc(roomHandler.RemoveMember)))
	mux.Handle("PUT /api/rooms/{id}/archive", requireAuth(http.HandlerFunc(roomHandler.Archive)))
	mux.Handle("GET /api/rooms/{id}/members", requireAuth(http.HandlerFunc(roomHandler.Members)))

	// Follow and catalog endpoints
	mux.Handle("POST /api/follows", requireAuth(http.HandlerFunc(followHandler.Follow)))
	mux.Handle("DELETE /api/follows", requireAuth(http.HandlerFunc(followHandler.Unfollow)))
	mux.Handle("GET /api/follows", requireAuth(http.HandlerFunc(followHandler.List)))
	mux.Handle("GET /api/institutions", requireAuth(http.HandlerFunc(followHandler.ListInstitutions)))
	mux.Handle("GET /api/institutions/{id}/departments", requireAuth(http.HandlerFunc(followHandler.ListDepartments)))

	// Notification endpoints
	mux.Handle("GET /api/notifications", requireAuth(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("GET /api/notifications/unread-count", requireAuth(http.HandlerFunc(notificationHandler.UnreadCount)))
	mux.Handle("PUT /api/notifications/{id}/read", requireAuth(http.HandlerFunc(notificationHandler.MarkRead)))
	mux.Handle("PUT /api/notifications/read-all", requireAuth(http.HandlerFunc(notificationHandler.MarkAllRead)))

	// Suggestion endpoint
	mux.Handle("GET /api/suggestions/friends", requireAuth(http.HandlerFunc(suggestionHandler.Friends)))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
