package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/varlixo/varlixo/internal/auth"
	"github.com/varlixo/varlixo/internal/config"
	"github.com/varlixo/varlixo/internal/funding"
	"github.com/varlixo/varlixo/internal/identity"
	"github.com/varlixo/varlixo/internal/kyc"
	"github.com/varlixo/varlixo/internal/ledger"
	"github.com/varlixo/varlixo/internal/middleware"
	"github.com/varlixo/varlixo/internal/notification"
	"github.com/varlixo/varlixo/internal/referral"
	"github.com/varlixo/varlixo/internal/twofactor"
	"github.com/varlixo/varlixo/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database or Redis the in-memory backends are used, which only makes sense
// in dev.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Repositories
	var (
		userRepo       identity.Repository
		walletRepo     wallet.Repository
		txlog          ledger.Repository
		depositRepo    funding.DepositRepository
		withdrawalRepo funding.WithdrawalRepository
		referralRepo   referral.Repository
		kycRepo        kyc.Repository
	)
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		txlog = ledger.NewPostgresRepository(d.DB)
		depositRepo = funding.NewPostgresDepositRepository(d.DB)
		withdrawalRepo = funding.NewPostgresWithdrawalRepository(d.DB)
		referralRepo = referral.NewPostgresRepository(d.DB)
		kycRepo = kyc.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
		txlog = ledger.NewInMemory()
		depositRepo = funding.NewMemoryDepositRepository()
		withdrawalRepo = funding.NewMemoryWithdrawalRepository()
		referralRepo = referral.NewMemoryRepository()
		kycRepo = kyc.NewMemoryRepository()
	}

	// Services
	totp := twofactor.TOTP{Issuer: d.Cfg.AppName}
	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(userRepo, totp)
	authSvc := auth.NewService(d.Cfg, userRepo)
	referralSvc := referral.NewService(referralRepo, walletRepo, txlog, d.Logger)
	fundingSvc := funding.NewService(userRepo, walletRepo, depositRepo, withdrawalRepo,
		txlog, totp, notifier, d.Logger, d.Cfg.AdminEmail)
	kycSvc := kyc.NewService(kycRepo, userRepo, d.Logger)

	// Handlers
	authHandler := auth.NewHandler(identitySvc, authSvc, referralSvc)
	identityHandler := identity.NewHandler(identitySvc)
	fundingHandler := funding.NewHandler(fundingSvc)
	referralHandler := referral.NewHandler(referralSvc)
	kycHandler := kyc.NewHandler(kycSvc)

	api := app.Group("/api/v1")

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, userRepo)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	api.Post("/auth/logout", jwtmw, authHandler.Logout)

	RegisterProfileRoutes(protected, identityHandler)
	RegisterWalletRoutes(protected, fundingHandler)
	RegisterKycRoutes(protected, kycHandler)
	RegisterReferralRoutes(protected, referralHandler)

	return nil
}
