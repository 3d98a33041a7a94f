package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/compsocial/compsocial-server/internal/config"
	"github.com/compsocial/compsocial-server/internal/database"
	"github.com/compsocial/compsocial-server/internal/handlers"
	"github.com/compsocial/compsocial-server/internal/mailer"
	"github.com/compsocial/compsocial-server/internal/repository"
	"github.com/compsocial/compsocial-server/internal/services"
	"github.com/compsocial/compsocial-server/internal/token"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AppContext holds everything the server needs after wiring.
type AppContext struct {
	Config  *config.Config
	Logger  *zap.Logger
	Sugar   *zap.SugaredLogger
	Mongo   *mongo.Client
	Tokens  *token.Manager
	Handler *handlers.Handler
}

type CleanupFn func(context.Context)

// Init loads configuration and wires the repositories, services, and
// handlers. The returned cleanup closes external connections.
func Init(configPath string) (*AppContext, CleanupFn, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	var logger *zap.Logger
	if cfg.App.Env == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	sugar := logger.Sugar()

	app := &AppContext{Config: cfg, Logger: logger, Sugar: sugar}
	sugar.Infof("Starting server in %s environment", cfg.App.Env)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		return nil, nil, err
	}
	app.Mongo = mongoClient

	app.Tokens = token.NewManager(
		cfg.App.JWT.Secret,
		time.Duration(cfg.App.JWT.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.App.JWT.VerificationTTLHours)*time.Hour,
		time.Duration(cfg.App.JWT.RefreshTTLDays)*24*time.Hour,
		cfg.Security.PasswordHashCost,
	)

	mail := mailer.NewClient(cfg.Mail.APIKey, cfg.Mail.FromEmail, cfg.Mail.FromName, cfg.Mail.VerifyURL)
	if !mail.IsConfigured() {
		sugar.Warn("Mail client not fully configured. Verification emails will be skipped.")
	}

	userRepo := repository.NewMongoUserRepo(db)
	sessionRepo := repository.NewMongoSessionRepo(db)
	gameRepo := repository.NewMongoGameRepo(db)

	authSvc := services.NewAuthService(userRepo, sessionRepo, app.Tokens, mail, cfg.Security.PasswordHashCost, sugar)
	gameSvc := services.NewGameService(gameRepo, userRepo, services.GameConfig{
		BudgetMax:            cfg.Game.BudgetMax,
		PeriodMaxMinutes:     cfg.Game.PeriodMaxMinutes,
		DefaultPeriodMinutes: cfg.Game.DefaultPeriodMinutes,
		BcryptCost:           cfg.Security.PasswordHashCost,
	}, sugar)

	app.Handler = handlers.NewHandler(authSvc, gameSvc, sugar)

	return app, func(ctx context.Context) {
		if cerr := logger.Sync(); cerr != nil {
			log.Printf("Logger sync error: %v", cerr)
		}
		if cerr := mongoClient.Disconnect(ctx); cerr != nil {
			sugar.Errorf("MongoDB disconnect error: %v", cerr)
		}
	}, nil
}
