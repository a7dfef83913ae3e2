package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	tele "gopkg.in/telebot.v3"

	"github.com/jooksuklubid/runclubs/internal/adapters/config"
	"github.com/jooksuklubid/runclubs/internal/adapters/controller/scheduler"
	"github.com/jooksuklubid/runclubs/internal/adapters/database/postgres"
	"github.com/jooksuklubid/runclubs/internal/adapters/storage/logos"
	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/internal/domain/service"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/clock"
	"github.com/jooksuklubid/runclubs/internal/domain/utils/validator"
	"github.com/jooksuklubid/runclubs/pkg/logger"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
	qr "github.com/jooksuklubid/runclubs/pkg/qrcode"
	"github.com/jooksuklubid/runclubs/pkg/smtp"
)

type Server struct {
	Config    *config.Config
	Router    *mux.Router
	HTTP      *http.Server
	Scheduler *scheduler.Scheduler
	Logger    *types.Logger

	Auth      *service.AuthService
	Clubs     *service.ClubService
	Events    *service.EventService
	Public    *service.EventService
	QR        *service.QrService
	Retention *service.RetentionService
	Logos     *logos.Storage
}

type clubNotifier interface {
	ClubRegistered(club entity.Club) error
}

type codeSender interface {
	SendLoginCode(to, code string) error
}

func named(names ...string) (map[string]*types.Logger, error) {
	loggers := make(map[string]*types.Logger, len(names))
	for _, name := range names {
		l, err := logger.Named(name)
		if err != nil {
			return nil, err
		}
		loggers[name] = l
	}
	return loggers, nil
}

// New wires storages and services over the handles opened by config.Get.
func New(cfg *config.Config) (*Server, error) {
	log, err := named("http", "clubs", "events", "retention", "auth", "notify", "qr", "scheduler", "smtp")
	if err != nil {
		return nil, err
	}

	clk := clock.NewSystem(cfg.Location)
	v := validator.New(clk)

	logoStorage, err := logos.NewStorage(cfg.Logos.Dir, cfg.Logos.URLPrefix)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(cfg, log["notify"])
	if err != nil {
		return nil, err
	}

	clubStorage := postgres.NewClubStorage(cfg.Database)
	eventStorage := postgres.NewEventStorage(cfg.Database)
	publicEvents := postgres.NewPublicEventStorage(cfg.Database)
	userStorage := postgres.NewUserStorage(cfg.Database)

	clubs := service.NewClubService(clubStorage, v, notifier, logoStorage, clk, log["clubs"])

	var sender codeSender
	if cfg.SendsMail() {
		sender = smtp.NewClient(cfg.SMTPDialer, cfg.SMTP.From, cfg.SMTP.Domain, log["smtp"])
	} else {
		sender = smtp.NewLogClient(log["smtp"])
	}

	s := &Server{
		Config: cfg,
		Router: mux.NewRouter(),
		Logger: log["http"],
		Auth: service.NewAuthService(cfg.Redis.Codes, cfg.Redis.Revoked, userStorage, sender, v, clk, service.AuthConfig{
			Secret:      []byte(cfg.Auth.Secret),
			TokenTTL:    cfg.Auth.TokenTTL,
			CodeTTL:     cfg.Auth.CodeTTL,
			AdminEmails: cfg.Auth.AdminEmails,
		}, log["auth"]),
		Clubs:     clubs,
		Events:    service.NewEventService(eventStorage, eventStorage, clubStorage, v, clk, cfg.Location, cfg.HTTP.BaseURL, log["events"]),
		Public:    service.NewEventService(eventStorage, publicEvents, clubStorage, v, clk, cfg.Location, cfg.HTTP.BaseURL, log["events"]),
		QR:        service.NewQrService(qr.Directory, clubs, logoStorage, cfg.HTTP.BaseURL, log["qr"]),
		Retention: service.NewRetentionService(eventStorage, clk, log["retention"]),
		Logos:     logoStorage,
		Scheduler: scheduler.New(cfg.Location, log["scheduler"]),
	}

	if err = s.Scheduler.AddRetention(cfg.Retention.Schedule, s.Retention); err != nil {
		return nil, err
	}

	s.HTTP = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// newNotifier creates the moderation bot when a token is configured and forwards
// error logs to the moderation chat.
func newNotifier(cfg *config.Config, notifyLogger *types.Logger) (clubNotifier, error) {
	if !cfg.NotifiesTelegram() {
		notifyLogger.Info("Telegram token not set, moderation notices disabled")
		return service.NopNotifier{}, nil
	}

	bot, err := tele.NewBot(tele.Settings{
		Token: cfg.Telegram.Token,
		OnError: func(err error, _ tele.Context) {
			notifyLogger.Errorf("telegram: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	notify := service.NewNotifyService(bot, cfg.Telegram.ModerationChatID, cfg.HTTP.BaseURL, notifyLogger)
	logger.SetLogHook(notify.LogHook(cfg.Telegram.LogLevel))
	return notify, nil
}

// Start serves HTTP and runs the scheduler until ctx is cancelled, then shuts both down.
func (s *Server) Start(ctx context.Context) error {
	s.Scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Infof("HTTP server listening on %s", s.HTTP.Addr)
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		s.Logger.Info("Shutting down")
	case serveErr = <-errCh:
		if serveErr != nil {
			serveErr = fmt.Errorf("http server: %w", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.HTTP.ShutdownTimeout)
	defer cancel()

	return errors.Join(
		serveErr,
		s.HTTP.Shutdown(shutdownCtx),
		s.Scheduler.Stop(shutdownCtx),
	)
}
