package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"peymonak_backend/internal/config"
	"peymonak_backend/internal/controller"
	"peymonak_backend/internal/reference"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/configwatcher"
	"peymonak_backend/pkg/database"
	"peymonak_backend/pkg/logger"
	"peymonak_backend/pkg/monitoring"
	"peymonak_backend/pkg/security"
	"peymonak_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultConfigFile is watched for runtime changes unless App.ConfigFile is set.
const DefaultConfigFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	ConfigFile      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

// Dependencies are the external collaborators New does not create itself.
type Dependencies struct {
	SMS     service.SMSSender
	Storage *service.StorageService
	Catalog reference.Lookup
}

type repositories struct {
	account     *repository.AccountRepository
	profile     *repository.ProfileRepository
	ad          *repository.AdRepository
	cooperation *repository.CooperationRepository
	savedAd     *repository.SavedAdRepository
	province    *repository.ProvinceRepository
	support     *repository.SupportRepository
}

type services struct {
	store        *service.RedisStore
	tokens       *service.TokenService
	verification *service.VerificationService
	auth         *service.AuthService
	images       *service.ImageService
	profile      *service.ProfileService
	ad           *service.AdService
	cooperation  *service.CooperationService
	savedAd      *service.SavedAdService
	province     *service.ProvinceService
	support      *service.SupportService
}

type controllers struct {
	auth        *controller.AuthController
	profile     *controller.ProfileController
	ad          *controller.AdController
	cooperation *controller.CooperationController
	savedAd     *controller.SavedAdController
	province    *controller.ProvinceController
	support     *controller.SupportController
	reference   *controller.ReferenceController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		account:     repository.NewAccountRepository(db),
		profile:     repository.NewProfileRepository(db),
		ad:          repository.NewAdRepository(db),
		cooperation: repository.NewCooperationRepository(db),
		savedAd:     repository.NewSavedAdRepository(db),
		province:    repository.NewProvinceRepository(db),
		support:     repository.NewSupportRepository(db),
	}
}

func initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Dependencies) *services {
	s := &services{}

	s.store = service.NewRedisStore(rdb)
	s.tokens = service.NewTokenService(repos.account, s.store, &cfg.JWT)
	s.verification = service.NewVerificationService(repos.account, deps.SMS, s.store, s.tokens, &cfg.Verification)
	s.auth = service.NewAuthService(db, repos.account, s.tokens)
	s.images = service.NewImageService(deps.Storage)
	s.profile = service.NewProfileService(db, repos.profile, s.images, deps.Catalog)
	s.ad = service.NewAdService(db, repos.ad, repos.account, repos.profile, s.images, deps.Catalog)
	s.cooperation = service.NewCooperationService(db, repos.cooperation, repos.ad, repos.account)
	s.savedAd = service.NewSavedAdService(repos.savedAd, repos.ad)
	s.province = service.NewProvinceService(repos.province, deps.Catalog)
	s.support = service.NewSupportService(repos.support)

	return s
}

func initControllers(s *services, db *gorm.DB, rdb *redis.Client, catalog reference.Lookup) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.verification, s.auth, s.tokens),
		profile:     controller.NewProfileController(s.profile),
		ad:          controller.NewAdController(s.ad),
		cooperation: controller.NewCooperationController(s.cooperation),
		savedAd:     controller.NewSavedAdController(s.savedAd),
		province:    controller.NewProvinceController(s.province),
		support:     controller.NewSupportController(s.support),
		reference:   controller.NewReferenceController(catalog),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New assembles the HTTP application on top of already opened connections.
// rdb may be nil, in which case cooldowns and token revocation are disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Dependencies) *App {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	app := &App{
		Config:     cfg,
		ConfigFile: DefaultConfigFile,
		DB:         db,
		Redis:      rdb,
	}

	repos := initRepositories(db)
	svcs := initServices(repos, cfg, db, rdb, deps)
	ctrls := initControllers(svcs, db, rdb, deps.Catalog)

	monitoring.Init()
	util.RegisterValidators()

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, repos, svcs, cfg)

	if cfg.Storage.Type == "local" {
		router.Static(localImagesPath(cfg.Storage.PublicBaseURL), cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})

	return app
}

func localImagesPath(publicBaseURL string) string {
	if publicBaseURL == "" || publicBaseURL[0] != '/' {
		return "/images"
	}
	return publicBaseURL
}

// RunMigrations opens the database, applies the schema and seeds support
// contacts.
func RunMigrations(cfg *config.Config) error {
	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return err
	}
	return database.Migrate(db, cfg.Support.Contacts)
}

// NewApp opens every external connection described by cfg and builds the app.
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db, cfg.Support.Contacts); err != nil {
			return nil, err
		}
		logger.Log.Info("Database migrated")
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	sms, err := service.NewSMSSender(cfg.SMS)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	storage, err := service.NewStorageService(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}

	catalog, err := reference.Load(cfg.Reference.ProvincesFile, cfg.Reference.CatalogFile)
	if err != nil {
		return nil, err
	}

	app := New(cfg, db, rdb, Dependencies{SMS: sms, Storage: storage, Catalog: catalog})

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	return app, nil
}

func (a *App) watchConfig(ctx context.Context) {
	if _, err := os.Stat(a.ConfigFile); err != nil {
		return
	}
	err := configwatcher.WatchConfig(ctx, filepath.Clean(a.ConfigFile), func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})
	if err != nil {
		logger.Log.Error("Config watcher stopped", zap.Error(err))
	}
}

// Run serves until SIGINT or SIGTERM, then drains requests for up to five
// seconds.
func (a *App) Run() error {
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.watchConfig(ctx)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	return nil
}
