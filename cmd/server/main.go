package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/helxplatform/eduhelx-student-ext/api/handler"
	"github.com/helxplatform/eduhelx-student-ext/internal/config"
	"github.com/helxplatform/eduhelx-student-ext/internal/infrastructure/downsync"
	"github.com/helxplatform/eduhelx-student-ext/internal/infrastructure/grader"
	"github.com/helxplatform/eduhelx-student-ext/internal/middleware"
	"github.com/helxplatform/eduhelx-student-ext/internal/router"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/lifecycle"
	"github.com/helxplatform/eduhelx-student-ext/pkg/httpcontext"
	"github.com/helxplatform/eduhelx-student-ext/pkg/logger"
	assignmentUC "github.com/helxplatform/eduhelx-student-ext/usecase/assignment"
	submissionUC "github.com/helxplatform/eduhelx-student-ext/usecase/submission"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		AppName:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	cwd, err := os.Getwd()
	if err != nil {
		zapLogger.Fatal("cannot resolve working directory", zap.Error(err))
	}

	graderClient, err := grader.New(grader.Config{
		APIURL:           cfg.Grader.APIURL,
		UserOnyen:        cfg.Grader.UserOnyen,
		AutogenPassword:  cfg.Grader.AutogenPassword,
		AccessToken:      cfg.Grader.AccessToken,
		JWTRefreshLeeway: cfg.Grader.JWTRefreshLeeway,
	}, cwd, zapLogger)
	if err != nil {
		zapLogger.Fatal("grader client init failed", zap.Error(err))
	}

	eng := engine.New(graderClient, engine.Config{
		AssignmentPollInterval: cfg.Sync.AssignmentPollInterval,
		CoursePollInterval:     cfg.Sync.CoursePollInterval,
		RosterPollInterval:     cfg.Sync.RosterPollInterval,
		InstructorMode:         cfg.Sync.InstructorMode,
	}, zapLogger)
	eng.Start(appCtx)

	channel := downsync.New(socketURL(cfg), cfg.Sync.ReconnectDelay, func(files []string) {
		eng.PushNotice(engine.Notice{Kind: engine.NoticeDownsync, Files: files})
		eng.WakeAssignments()
	}, zapLogger)
	channel.Start()
	manager.RegisterCloser("downsync_channel", channel)

	edits := assignmentUC.New(graderClient, eng, cfg.Sync.DebounceWindow, zapLogger)
	manager.RegisterCloser("edit_debouncer", edits)
	submissions := submissionUC.New(graderClient, eng, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(appCtx, cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Assignments:   apiHandler.NewAssignmentsHandler(eng, edits, ctxAdapter, zapLogger),
		Course:        apiHandler.NewCourseHandler(eng, ctxAdapter, zapLogger),
		Submission:    apiHandler.NewSubmissionHandler(submissions, ctxAdapter, zapLogger),
		Settings:      apiHandler.NewSettingsHandler(eng, graderClient, ctxAdapter, zapLogger),
		Notifications: apiHandler.NewNotificationsHandler(eng, ctxAdapter, zapLogger),
		Health:        apiHandler.NewHealthHandler(eng, channel, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.TokenAuth(cfg.HTTP.AccessToken, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.Concurrency,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.RegisterStop("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// socketURL derives the push-channel endpoint from the API URL when it is
// not configured explicitly.
func socketURL(cfg *config.Config) string {
	if cfg.Grader.SocketURL != "" {
		return cfg.Grader.SocketURL
	}
	u := cfg.Grader.APIURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return strings.TrimRight(u, "/") + "/ws"
}
