package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"certvault/config"
	authControllers "certvault/controllers/auth"
	certificateController "certvault/controllers/certificate"
	feedbackController "certvault/controllers/feedback"
	userProfileController "certvault/controllers/userControllers"
	"certvault/database"
	"certvault/feedback"
	"certvault/files"
	"certvault/logger"
	"certvault/mint"
	"certvault/routers"
	"certvault/services"
	"certvault/session"
	"certvault/store"
	"certvault/utils"
	"certvault/verification"

	"go.uber.org/zap"
)

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == "memory" {
		latency := store.Latency{}
		if cfg.SimulatedLatency {
			latency = store.DefaultLatency()
		}
		return store.NewSeededMemory(latency), nil
	}

	db, err := database.ConnectDb(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Seed(db); err != nil {
		return nil, err
	}
	return store.NewGorm(db), nil
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	l, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	st, err := openStore(cfg)
	if err != nil {
		l.Fatal("Failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	l.Info("Store ready", zap.String("driver", cfg.StoreDriver))

	var verifier verification.Verifier
	switch cfg.VerifyMode {
	case "worker":
		verifier = verification.NewWorkerVerifier(cfg.VerifyWorkerURL, cfg.VerifyWorkerToken, cfg.HTTPTimeout, l)
	default:
		verifier = verification.NewSimulatedVerifier(st, cfg.VerifyResolveAfter, l)
	}

	inbox := verification.NewInbox(0)
	notifiers := verification.Multi{inbox, verification.LogNotifier{Logger: l}}
	if cfg.SendgridAPIKey != "" {
		notifiers = append(notifiers, utils.NewEmailNotifier(cfg.SendgridAPIKey, cfg.EmailSender, st, l))
	}
	registry := verification.NewRegistry(verification.StatusCheckerFunc(st.GetStatus), notifiers, cfg.PollInterval, l)

	storage := files.NewStorage(cfg.UploadDir)
	certs := services.NewCertificateService(services.Deps{
		Store:         st,
		Verifier:      verifier,
		Registry:      registry,
		Minter:        mint.NewMinter(st, l),
		Storage:       storage,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        l,
	})

	sessions := session.NewManager(cfg.JWTKey, cfg.TokenTTL, st, l)

	app := routers.NewApp(routers.Handlers{
		Sessions: sessions,
		Auth: &authControllers.AuthController{
			Sessions: sessions,
			Wallet:   session.NewWalletSimulator(sessions, cfg.WalletGenerate),
		},
		Profile: &userProfileController.ProfileController{
			Profiles:  services.NewProfileService(st, storage, l),
			Dashboard: services.NewDashboardService(st),
			Inbox:     inbox,
		},
		Certificates: &certificateController.CertificateController{Certs: certs},
		Feedback: &feedbackController.FeedbackController{
			Relay: feedback.NewRelay(feedback.Config{
				APIURL:   cfg.TelegramAPIURL,
				BotToken: cfg.TelegramBotToken,
				ChatID:   cfg.TelegramChatID,
				Timeout:  cfg.HTTPTimeout,
			}, l),
		},
		CallbackSecret: cfg.VerifyCallbackSecret,
		UploadDir:      cfg.UploadDir,
		AccessLog:      true,
	})

	scheduler, err := utils.InitializeVerificationScheduler(cfg.SweepSchedule, certs)
	if err != nil {
		l.Fatal("Failed to start verification scheduler", zap.Error(err))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		l.Info("Shutting down...")
		if err := app.Shutdown(); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	l.Info("Server is running", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		l.Error("Server stopped", zap.Error(err))
	}

	<-scheduler.Stop().Done()
	registry.Close()
	if err := verifier.Close(); err != nil {
		l.Error("Failed to stop verifier", zap.Error(err))
	}
	if err := st.Close(); err != nil {
		l.Error("Failed to close store", zap.Error(err))
	}
	l.Info("Shutdown complete")
}
