package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/applications"
	googleauth "jobassist-backend/internal/auth"
	"jobassist-backend/internal/cvs"
	"jobassist-backend/internal/mail"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/config"
	"jobassist-backend/internal/shared/server"
	"jobassist-backend/internal/shared/storage/db"
	"jobassist-backend/internal/shared/storage/object"
	localstore "jobassist-backend/internal/shared/storage/object/local"
	s3store "jobassist-backend/internal/shared/storage/object/s3"
	"jobassist-backend/internal/shared/workerpool"
	"jobassist-backend/internal/users"
)

// App holds shared dependencies wired once at startup.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.BlobStore

	UsersRepo        users.Repo
	ProfilesRepo     profiles.Repo
	CVsRepo          cvs.Repo
	ApplicationsRepo applications.Repo

	UsersService        *users.Service
	ProfilesService     *profiles.Service
	CVService           *cvs.Service
	ApplicationsService *applications.Service

	Credentials *mail.CredentialManager
	Gateway     *mail.Gateway
	Sweeper     *mail.Sweeper
	GoogleAuth  *googleauth.GoogleService
}

// Build prepares the dependency graph and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Store: store}
	buildRepos(app)
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		GoogleAuth:         app.GoogleAuth,
		ProfileHandler:     profiles.NewHandler(app.ProfilesService),
		CVHandler:          cvs.NewHandler(app.CVService),
		ApplicationHandler: applications.NewHandler(app.ApplicationsService),
	})
	return app, nil
}

func buildRepos(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ProfilesRepo = &profiles.PGRepo{DB: app.DB}
		app.CVsRepo = &cvs.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
		return
	}
	app.UsersRepo = users.NewMemoryRepo()
	app.ProfilesRepo = profiles.NewMemoryRepo()
	app.CVsRepo = cvs.NewMemoryRepo()
	app.ApplicationsRepo = applications.NewMemoryRepo()
}

func buildServices(app *App) {
	cfg := app.Config

	app.UsersService = users.NewService(app.UsersRepo)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.UsersService,
	)

	app.Credentials = mail.NewCredentialManager(
		app.UsersService,
		app.GoogleAuth.OAuthConfig(),
		cfg.TokenRefreshMargin,
		cfg.MailHTTPTimeout,
	)
	app.Gateway = mail.NewGateway(mail.NewGmailProvider(app.Credentials))

	pool := workerpool.New(cfg.MailPoolWorkers, cfg.MailPoolQueue)
	app.Sweeper = mail.NewSweeper(app.UsersService, app.Credentials, cfg.SweepInterval, cfg.SweepHorizon, pool)

	app.ProfilesService = profiles.NewService(app.ProfilesRepo)
	app.CVService = cvs.NewService(app.CVsRepo, app.ProfilesRepo, app.Store)
	app.ApplicationsService = applications.NewService(
		app.ApplicationsRepo,
		app.UsersService,
		app.ProfilesRepo,
		app.CVService,
		app.Gateway,
	)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.BlobStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
