package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agamariel/rentcar/internal/airtable"
	"github.com/agamariel/rentcar/internal/auth"
	"github.com/agamariel/rentcar/internal/config"
	"github.com/agamariel/rentcar/internal/documents"
	"github.com/agamariel/rentcar/internal/handlers"
	"github.com/agamariel/rentcar/internal/jobs"
	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/migrations"
	"github.com/agamariel/rentcar/internal/pricing"
	"github.com/agamariel/rentcar/internal/services"
	"github.com/agamariel/rentcar/internal/storage"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg       *config.Config
	dbPool    *pgxpool.Pool
	drafts    storage.DraftStorage
	uploader  documents.Uploader
	uploadDir string
	echo      *echo.Echo

	catalog    *services.CatalogService
	submission *services.SubmissionService
	wizards    *services.WizardService
	worker     *services.CatalogWorker
	scheduler  *jobs.Scheduler

	// Handlers
	sessionHandler *handlers.SessionHandler
	catalogHandler *handlers.CatalogHandler
	contactHandler *handlers.ContactHandler
	wizardHandler  *handlers.WizardHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg: cfg,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initUploader(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase подключает PostgreSQL для черновиков и выполняет миграции.
// Без DATABASE_URI черновики хранятся в памяти.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		logger.Warn("DATABASE_URI is not configured, drafts are kept in memory")
		app.drafts = storage.NewMemoryDraftStorage()
		return nil
	}

	// Применение миграций
	logger.Info("running database migrations")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.RunContext(ctx, sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.drafts = storage.NewPostgresDraftStorage(dbPool)
	logger.Info("successfully connected to database")

	return nil
}

// initUploader выбирает хранилище фото документов.
func (app *App) initUploader(ctx context.Context) error {
	switch app.cfg.StorageType {
	case config.StorageFirebase:
		uploader, err := documents.NewFirebaseUploader(ctx, app.cfg.FirebaseBucket, app.cfg.FirebaseCredentials)
		if err != nil {
			return err
		}
		app.uploader = uploader
		logger.Info("document storage: firebase", "bucket", app.cfg.FirebaseBucket)
	default:
		uploader, err := documents.NewLocalUploader(app.cfg.UploadBaseURL, app.cfg.UploadDir)
		if err != nil {
			return err
		}
		app.uploader = uploader
		app.uploadDir = uploader.Dir()
		logger.Info("document storage: local", "dir", uploader.Dir())
	}
	return nil
}

// initDependencies инициализирует все зависимости приложения (clients, services, handlers).
func (app *App) initDependencies() error {
	rates, err := pricing.LoadRates(app.cfg.PricingConfig)
	if err != nil {
		return err
	}
	engine := pricing.NewEngine(rates)

	// Клиент таблиц
	if app.cfg.AirtableBaseID == "" || app.cfg.AirtableToken == "" {
		logger.Warn("AIRTABLE_BASE_ID or AIRTABLE_TOKEN is not configured, catalog will be unavailable")
	}
	client := airtable.NewHTTPClient(airtable.Config{
		BaseURL:      app.cfg.AirtableAPIURL,
		BaseID:       app.cfg.AirtableBaseID,
		Token:        app.cfg.AirtableToken,
		CarsTable:    app.cfg.AirtableCarsTable,
		OrdersTable:  app.cfg.AirtableOrdersTable,
		ContactTable: app.cfg.AirtableContactTable,
		Timeout:      10 * time.Second,
	})

	// Письмо о заявке
	var notifier services.Notifier
	if app.cfg.SendgridAPIKey != "" {
		notifier = services.NewSendgridNotifier(app.cfg.SendgridAPIKey, app.cfg.MailFrom, "")
	} else {
		logger.Warn("SENDGRID_API_KEY is not configured, confirmation e-mails are disabled")
	}

	// Service layer
	app.catalog = services.NewCatalogService(client)
	app.submission = services.NewSubmissionService(client, app.uploader, notifier)
	app.wizards = services.NewWizardService(app.catalog, engine, app.submission, app.drafts)
	contacts := services.NewContactService(client)

	app.worker = services.NewCatalogWorker(app.catalog, app.cfg.CatalogRefreshInterval)

	scheduler, err := jobs.NewScheduler(app.cfg.DraftCleanupSchedule, jobs.NewDraftCleanup(app.drafts, app.cfg.DraftRetention))
	if err != nil {
		return err
	}
	scheduler.EvictIdleWizards(jobs.NewWizardEviction(app.wizards, app.cfg.WizardIdleTimeout))
	app.scheduler = scheduler

	// Handler layer
	app.sessionHandler = handlers.NewSessionHandler(app.cfg.JWTSecret, app.cfg.TokenExpiration)
	app.catalogHandler = handlers.NewCatalogHandler(app.catalog)
	app.contactHandler = handlers.NewContactHandler(contacts)
	app.wizardHandler = handlers.NewWizardHandler(app.wizards)

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderAuthorization},
		AllowCredentials: false,
	}))
	e.Use(middleware.BodyLimit("25M"))

	// Фото документов при локальном хранилище
	if app.uploadDir != "" {
		e.Static(app.cfg.UploadBaseURL, app.uploadDir)
	}

	// Публичные маршруты
	e.POST("/api/session", app.sessionHandler.Create)
	e.GET("/api/cars", app.catalogHandler.List)
	e.GET("/api/cars/:id", app.catalogHandler.Get)
	e.GET("/api/cars/:id/disabled-days", app.catalogHandler.DisabledDays)
	e.POST("/api/contact", app.contactHandler.Submit)

	// Мастер бронирования (требует сессии)
	w := e.Group("/api/wizard/:carId")
	w.Use(auth.SessionMiddleware(app.cfg.JWTSecret))
	w.POST("", app.wizardHandler.Open)
	w.GET("", app.wizardHandler.View)
	w.DELETE("", app.wizardHandler.Close)
	w.POST("/reset", app.wizardHandler.Reset)
	w.POST("/dates/select", app.wizardHandler.SelectDate)
	w.PUT("/dates", app.wizardHandler.SetDates)
	w.DELETE("/dates", app.wizardHandler.ClearDates)
	w.PATCH("/extras", app.wizardHandler.UpdateExtras)
	w.PATCH("/customer", app.wizardHandler.UpdateCustomer)
	w.PUT("/documents/:side", app.wizardHandler.AttachDocument)
	w.DELETE("/documents/:side", app.wizardHandler.RemoveDocument)
	w.POST("/next", app.wizardHandler.Next)
	w.POST("/back", app.wizardHandler.Back)

	app.echo = e
}

// Start запускает приложение.
func (app *App) Start(ctx context.Context) error {
	// Первичная загрузка каталога; ошибка не мешает запуску, воркер повторит
	if err := app.catalog.Refresh(ctx); err != nil {
		logger.Warn("initial catalog load failed", "error", err)
	}

	app.worker.Start(ctx)
	app.scheduler.Start()

	logger.Info("starting server", "address", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	logger.Info("shutting down server")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	app.scheduler.Stop(ctx)
	app.wizards.CloseAll()
	app.submission.Wait(ctx)

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	logger.Info("server gracefully stopped")
	return nil
}
