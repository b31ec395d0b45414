package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"

	"github.com/dylanswipeyourbite/squadupv2/activity"
	"github.com/dylanswipeyourbite/squadupv2/adapter/firebase"
	"github.com/dylanswipeyourbite/squadupv2/adapter/openai"
	"github.com/dylanswipeyourbite/squadupv2/cmd/squadup/config"
	"github.com/dylanswipeyourbite/squadupv2/command"
	"github.com/dylanswipeyourbite/squadupv2/httpapi"
	"github.com/dylanswipeyourbite/squadupv2/message"
	"github.com/dylanswipeyourbite/squadupv2/migrations"
	"github.com/dylanswipeyourbite/squadupv2/pkg/authctx"
	"github.com/dylanswipeyourbite/squadupv2/profile"
	"github.com/dylanswipeyourbite/squadupv2/service"
	"github.com/dylanswipeyourbite/squadupv2/squad"
)

type App struct {
	config   *gconfig.Container[*config.BaseConfig]
	bunDB    *bun.DB
	auth     *authctx.Authenticator
	verifier *firebase.Verifier
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
	squadup  *service.Service
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("squadup"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           "8978",
			RequestTimeout: httpapi.DefaultTimeout,
		},
		Persistence: config.PersistenceConfig{
			Driver:         "sqlite",
			Server:         "file:squadup.db?_journal_mode=WAL&cache=shared&_fk=1",
			PingTimeout:    5 * time.Second,
			OtelIdentifier: "squadup",
		},
		Auth: config.AuthConfig{
			Issuer:     authctx.DefaultIssuer,
			AccessTTL:  authctx.DefaultAccessTTL,
			RefreshTTL: authctx.DefaultRefreshTTL,
		},
		Firebase: config.FirebaseConfig{
			JWKSURL:         firebase.DefaultJWKSURL,
			RefreshInterval: time.Hour,
		},
		OpenAI: config.OpenAIConfig{
			Model:      "gpt-4-turbo-preview",
			MaxRetries: 2,
		},
		Features: map[string]bool{
			command.FeatureOnboardingAssistant: true,
		},
	}).WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	if err := WithSquadupService(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	serverCfg := app.Config().GetServer()
	addr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	app.GetLogger("app").Info("starting server", "addr", addr)
	go func() {
		if err := app.srv.Serve(addr); err != nil {
			app.GetLogger("app").Error("server stopped", "error", err)
		}
	}()

	sig := WaitExitSignal()
	app.GetLogger("app").Info("shutting down", "signal", sig.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		app.GetLogger("app").Error("server shutdown failed", "error", err)
	}
	app.verifier.Close()
	_ = app.bunDB.Close()
}

func WithPersistence(ctx context.Context, app *App) error {
	cfg := app.Config().GetPersistence()
	dialectName, err := migrations.NormalizeDialect(cfg.GetDriver())
	if err != nil {
		return err
	}

	var (
		db      *sql.DB
		dialect schema.Dialect
	)
	switch dialectName {
	case "postgres":
		db, err = sql.Open("postgres", cfg.GetServer())
		dialect = pgdialect.New()
	default:
		db, err = sql.Open(sqliteshim.ShimName, cfg.GetServer())
		dialect = sqlitedialect.New()
	}
	if err != nil {
		return err
	}

	persistence.RegisterModel((*profile.Record)(nil))
	persistence.RegisterModel((*squad.Record)(nil))
	persistence.RegisterModel((*squad.MemberRecord)(nil))
	persistence.RegisterModel((*message.Record)(nil))
	persistence.RegisterModel((*message.ReactionRecord)(nil))
	persistence.RegisterModel((*message.ReceiptRecord)(nil))
	persistence.RegisterModel((*activity.Record)(nil))
	persistence.RegisterModel((*activity.CheckinRecord)(nil))

	bunClient, err := persistence.New(cfg, db, dialect)
	if err != nil {
		return err
	}
	bunClient.SetLogger(app.GetLogger("persistence"))

	for _, migrationsFS := range migrations.Filesystems() {
		bunClient.RegisterDialectMigrations(
			migrationsFS,
			persistence.WithDialectSourceLabel("."),
			persistence.WithValidationTargets("postgres", "sqlite"),
		)
	}

	if err := bunClient.ValidateDialects(ctx); err != nil {
		app.GetLogger("persistence").Warn("dialect validation failed", "error", err)
	}

	if err := bunClient.Migrate(ctx); err != nil {
		return err
	}

	if report := bunClient.Report(); report != nil && !report.IsZero() {
		app.GetLogger("persistence").Info("migrations applied", "report", report.String())
	}

	if err := migrations.ValidateSchema(ctx, db, dialectName); err != nil {
		return err
	}

	app.bunDB = bunClient.DB()
	return nil
}

func WithAuth(ctx context.Context, app *App) error {
	authCfg := app.Config().GetAuth()
	auth, err := authctx.NewAuthenticator(authctx.Config{
		SigningKey: []byte(authCfg.SigningKey),
		Issuer:     authCfg.Issuer,
		AccessTTL:  authCfg.AccessTTL,
		RefreshTTL: authCfg.RefreshTTL,
	})
	if err != nil {
		return err
	}

	fbCfg := app.Config().GetFirebase()
	verifier, err := firebase.NewVerifier(ctx, firebase.Config{
		ProjectID:       fbCfg.ProjectID,
		JWKSURL:         fbCfg.JWKSURL,
		RefreshInterval: fbCfg.RefreshInterval,
	})
	if err != nil {
		return err
	}

	app.auth = auth
	app.verifier = verifier
	return nil
}

func WithSquadupService(ctx context.Context, app *App) error {
	aiCfg := app.Config().GetOpenAI()
	svc, err := service.NewWithDB(app.bunDB, service.Config{
		Verifier: app.verifier,
		Issuer:   app.auth,
		Completer: openai.NewCompleter(openai.Config{
			APIKey:     aiCfg.APIKey,
			BaseURL:    aiCfg.BaseURL,
			MaxRetries: aiCfg.MaxRetries,
		}),
		OnboardingModel: aiCfg.Model,
		FeatureGate:     command.StaticFeatureGate(app.Config().GetFeatures()),
		Masker:          command.DefaultMasker(),
		Logger:          &loggerAdapter{app.GetLogger("squadup")},
	})
	if err != nil {
		return err
	}
	if err := svc.HealthCheck(ctx); err != nil {
		return err
	}
	app.squadup = svc
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	api, err := httpapi.New(httpapi.Config{
		Service:       app.squadup,
		Authenticator: app.auth,
		Timeout:       app.Config().GetServer().RequestTimeout,
		Logger:        &loggerAdapter{app.GetLogger("http")},
	})
	if err != nil {
		return err
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		})
	})
	srv.Router().WithLogger(app.GetLogger("router"))
	httpapi.Register(srv.Router(), api)

	app.srv = srv
	return nil
}

// loggerAdapter adapts glog.Logger to types.Logger
type loggerAdapter struct {
	l glog.Logger
}

func (a *loggerAdapter) Debug(msg string, args ...any) {
	a.l.Debug(msg, args...)
}

func (a *loggerAdapter) Info(msg string, args ...any) {
	a.l.Info(msg, args...)
}

func (a *loggerAdapter) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err}, args...)
	}
	a.l.Error(msg, args...)
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
