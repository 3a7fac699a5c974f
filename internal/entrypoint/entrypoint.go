package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aniping/aniping/internal/auth"
	"github.com/aniping/aniping/internal/cli"
	"github.com/aniping/aniping/internal/config"
	"github.com/aniping/aniping/internal/database"
	"github.com/aniping/aniping/internal/database/anime"
	"github.com/aniping/aniping/internal/database/users"
	"github.com/aniping/aniping/internal/database/watchlist"
	http_controllers "github.com/aniping/aniping/internal/http"
	"github.com/aniping/aniping/internal/jikan"
	"github.com/aniping/aniping/internal/notify"
	"github.com/aniping/aniping/internal/scheduler"
	"github.com/aniping/aniping/internal/tasks"
	"github.com/aniping/aniping/internal/tracker"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// logNotifier announces episodes to the log when the UDP notify server is
// disabled, so the airing check can still run on its own.
type logNotifier struct {
	log *logrus.Logger
}

func (n logNotifier) NotifyEpisode(msg notify.NewEpisodeMessage, userIDs []uint) {
	n.log.Infof("new episode of %q (id %d) for %d watcher(s)", msg.Title, msg.MALID, len(userIDs))
}

// services bundles everything both the server and the interactive menu need.
type services struct {
	db       *database.Database
	animes   *anime.Repository
	userRepo *users.Repository
	watch    *watchlist.Repository
	client   *jikan.Client
	tracker  *tracker.Service
	auth     *auth.Service
}

func buildServices(cfg *config.Config) (*services, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	animes := anime.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	watch := watchlist.NewRepository(db.DB)
	client := jikan.NewClient(cfg.Jikan.BaseURL, cfg.Jikan.Timeout, cfg.Jikan.RateLimit)

	return &services{
		db:       db,
		animes:   animes,
		userRepo: userRepo,
		watch:    watch,
		client:   client,
		tracker:  tracker.NewService(client, animes, watch),
		auth:     auth.NewService(userRepo, cfg.Auth),
	}, nil
}

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it.
func Serve(router *gin.Engine, cfg *config.Config, log *logrus.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Infof("starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("shutting down, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before draining in-flight requests.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}

	log.Info("server exiting")
}

// Run starts the API server together with the background machinery: the
// task queue, the airing-check scheduler and the UDP notify server.
func Run(cfg *config.Config, log *logrus.Logger, version string) {
	log.Infof("starting AniPing v%s", version)

	svcs, err := buildServices(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := svcs.db.Close(); err != nil {
			log.Errorf("error closing database: %v", err)
		}
	}()

	// UDP notify server, when enabled. Clients register over UDP and
	// receive new-episode announcements.
	var notifyServer *notify.Server
	var notifier scheduler.Notifier = logNotifier{log: log}
	if cfg.Notify.Enabled {
		notifyServer = notify.NewServer(cfg.Notify.Addr, notify.NewRegistry(), log)
		go func() {
			if err := notifyServer.Run(); err != nil {
				log.Errorf("notify server: %v", err)
			}
		}()
		notifier = notifyServer
	}

	// Airing-check scheduler.
	var airing *scheduler.AiringScheduler
	if cfg.AiringCheck.Enabled {
		airing = scheduler.NewAiringScheduler(
			svcs.animes, svcs.watch, svcs.client, notifier, cfg.AiringCheck.Schedule, log)
		if err := airing.Start(); err != nil {
			log.Fatalf("failed to start airing scheduler: %v", err)
		}
	}

	// Task queue for background metadata refreshes.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var refresher *tasks.RefreshScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks, log)
		if err != nil {
			log.Fatalf("failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Errorf("error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRefreshAnimeQueue(svcs.tracker, log),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		refresher = tasks.NewRefreshScheduler(taskClient, svcs.animes, cfg.Tasks.RefreshSchedule, log)
		if err := refresher.Start(); err != nil {
			log.Fatalf("failed to start refresh scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		AuthService: svcs.auth,
		Tracker:     svcs.tracker,
	})

	onShutdown := func(ctx context.Context) {
		if refresher != nil {
			refresher.Stop()
		}
		if airing != nil {
			airing.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if notifyServer != nil {
			notifyServer.Close()
		}
	}

	Serve(router, cfg, log, onShutdown)
}

// RunMenu starts the interactive terminal shell on stdin/stdout.
func RunMenu(cfg *config.Config, log *logrus.Logger) {
	svcs, err := buildServices(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := svcs.db.Close(); err != nil {
			log.Errorf("error closing database: %v", err)
		}
	}()

	menu := cli.NewMenu(os.Stdin, os.Stdout, svcs.auth, svcs.tracker)
	if err := menu.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
