package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	authdomain "meeting-portal-backend/internal/auth/domain"
	authRepo "meeting-portal-backend/internal/auth/repository"
	authUsecase "meeting-portal-backend/internal/auth/usecase"
	calendardomain "meeting-portal-backend/internal/calendar/domain"
	calendarRepo "meeting-portal-backend/internal/calendar/repository"
	"meeting-portal-backend/internal/calendar/scheduler"
	calendarUsecase "meeting-portal-backend/internal/calendar/usecase"
	"meeting-portal-backend/internal/notification"
	"meeting-portal-backend/pkg/config"
	"meeting-portal-backend/pkg/database"
	"meeting-portal-backend/pkg/fcm"
	"meeting-portal-backend/pkg/graph"
	"meeting-portal-backend/pkg/ratelimit"

	"gorm.io/gorm"
)

const eventBufferSize = 256

// App holds the wired services shared by the API server and portalctl
type App struct {
	Config *config.Config
	DB     *gorm.DB

	TokenStore   calendarRepo.TokenStore
	UserRepo     authRepo.UserRepository
	FCMTokenRepo authRepo.FCMTokenRepository

	AuthUsecase       authUsecase.AuthUsecase
	SyncUsecase       calendarUsecase.SyncUsecase
	ConnectionUsecase calendarUsecase.ConnectionUsecase
	MeetingUsecase    calendarUsecase.MeetingUsecase

	Bus          *notification.Bus
	Notification *notification.Service
	pubsub       *notification.PubSubPublisher
	notifying    bool
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&calendardomain.TokenRecord{},
		&calendardomain.Meeting{},
		&calendardomain.SyncRun{},
	)
}

// New connects to the database and wires repositories, clients and usecases.
// Push and Pub/Sub forwarding are optional and only logged when unavailable.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	tokenStore := calendarRepo.NewTokenStore(db)
	meetingRepo := calendarRepo.NewMeetingRepository(db)
	syncRunRepo := calendarRepo.NewSyncRunRepository(db)

	// Outbound clients share one timeout
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	graphClient := graph.NewClient(cfg.GraphBaseURL, httpClient)
	tokenClient := graph.NewTokenClient(cfg.MicrosoftTokenURL, cfg.MicrosoftClientID, cfg.MicrosoftClientSecret, cfg.MicrosoftScopes, httpClient)
	oauthConfig := graph.NewOAuthConfig(cfg.MicrosoftClientID, cfg.MicrosoftClientSecret, cfg.MicrosoftTenant, cfg.MicrosoftRedirectURI, cfg.MicrosoftTokenURL, cfg.MicrosoftScopes)
	if cfg.MicrosoftClientID == "" {
		log.Println("[WARN] MS_CLIENT_ID not configured, Outlook connect is disabled")
	}

	bus := notification.NewBus(eventBufferSize)

	// Initialize use cases (dependency injection)
	limiter := ratelimit.NewSlidingWindow(cfg.RefreshRateLimit, cfg.RefreshRateWindow)
	refresher := calendarUsecase.NewTokenRefresher(tokenStore, tokenClient, limiter)
	fetcher := calendarUsecase.NewCalendarFetcher(tokenStore, graphClient, refresher, cfg.SyncPageSize, nil)
	reconciler := calendarUsecase.NewEventReconciler(meetingRepo, nil)

	a := &App{
		Config:            cfg,
		DB:                db,
		TokenStore:        tokenStore,
		UserRepo:          userRepo,
		FCMTokenRepo:      fcmTokenRepo,
		AuthUsecase:       authUsecase.NewAuthUsecase(userRepo, fcmTokenRepo, cfg),
		SyncUsecase:       calendarUsecase.NewSyncUsecase(fetcher, reconciler, syncRunRepo, bus, cfg.SyncMinInterval),
		ConnectionUsecase: calendarUsecase.NewConnectionUsecase(oauthConfig, tokenStore, syncRunRepo, cfg.JWTSecret),
		MeetingUsecase:    calendarUsecase.NewMeetingUsecase(meetingRepo),
		Bus:               bus,
	}

	a.Notification = notification.NewService(bus, a.newPushSender(ctx), fcmTokenRepo, a.newForwarder(ctx), cfg.FrontendURL)
	return a, nil
}

func (a *App) newPushSender(ctx context.Context) notification.PushSender {
	if a.Config.FirebaseCredentials == "" {
		log.Println("[WARN] No Firebase credentials configured, reconnect push disabled")
		return nil
	}
	client, err := fcm.NewClient(ctx, a.Config.FirebaseCredentials)
	if err != nil {
		log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		return nil
	}
	return client
}

func (a *App) newForwarder(ctx context.Context) notification.Forwarder {
	if a.Config.GoogleProjectID == "" || a.Config.GooglePubSubTopic == "" {
		log.Println("[WARN] Pub/Sub not configured, sync events stay in-process")
		return nil
	}

	// Accept either a short topic name or the full projects/<p>/topics/<t> resource name
	topicName := a.Config.GooglePubSubTopic
	if parts := strings.Split(topicName, "/"); len(parts) > 1 {
		topicName = parts[len(parts)-1]
	}

	publisher, err := notification.NewPubSubPublisher(ctx, a.Config.GoogleProjectID, topicName, a.Config.GoogleCredentials)
	if err != nil {
		log.Printf("[WARN] Failed to initialize Pub/Sub publisher: %v", err)
		return nil
	}
	a.pubsub = publisher
	return publisher
}

// StartNotifications consumes the event bus in the background until Close or ctx cancellation
func (a *App) StartNotifications(ctx context.Context) {
	a.notifying = true
	go a.Notification.Run(ctx)
}

// NewScheduler builds the background sync loop. enabled is consulted on every tick.
func (a *App) NewScheduler(enabled func() bool) *scheduler.SyncScheduler {
	return scheduler.NewSyncScheduler(a.TokenStore, a.SyncUsecase, a.Config.SyncInterval, a.Config.SyncWorkers, enabled)
}

// Close stops the event bus and releases external clients
func (a *App) Close() error {
	a.Bus.Close()
	if a.notifying {
		<-a.Notification.Done()
	}

	if a.pubsub != nil {
		if err := a.pubsub.Close(); err != nil {
			log.Printf("[WARN] Failed to close Pub/Sub client: %v", err)
		}
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
