package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-festival-companion/browser"
	"github.com/jrsteele09/go-festival-companion/events"
	"github.com/jrsteele09/go-festival-companion/gateway"
	"github.com/jrsteele09/go-festival-companion/internal/config"
	"github.com/jrsteele09/go-festival-companion/platform"
	"github.com/jrsteele09/go-festival-companion/proximity"
	"github.com/jrsteele09/go-festival-companion/sessions"
	"github.com/jrsteele09/go-festival-companion/sessions/filerepo"
	"github.com/jrsteele09/go-festival-companion/sessions/sqliterepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	c := config.New()
	setupLogging(c.GetEnv())

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("companion stopped with an error")
	}
	log.Info().Msg("companion stopped")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := openTokenStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepo()

	session := sessions.New(repo)
	if err := session.Load(ctx); err != nil {
		return fmt.Errorf("session.Load: %w", err)
	}

	client := gateway.New(c.GetAPIBaseURL(), &http.Client{Timeout: c.GetHTTPTimeout()}, session)
	authenticate(ctx, c, client)

	hub := browser.NewHub(c.GetAllowedOrigins().IsAllowedOrigin)
	rt := platform.Detect(ctx, c, hub)

	engine := proximity.NewEngine(rt.Locator, rt.Notifier, events.NewSource(client, c.GetCandidateLimit()),
		proximity.WithInterval(c.GetCheckInterval()),
		proximity.WithAlertRadius(c.GetAlertRadiusMeters()),
		proximity.WithSearchRadius(c.GetSearchRadiusMeters()),
		proximity.WithPositionTimeout(c.GetPositionTimeout()),
		proximity.WithMaxPerTick(c.GetMaxNotificationsPerTick()),
	)

	server := &http.Server{Addr: c.GetBridgeAddr(), Handler: browser.NewServer(c, hub, engine)}
	go listenAndServe(server)

	ended, unsubscribe := session.Subscribe()
	defer unsubscribe()
	go engine.StopWhenEnded(ctx, ended, hub.SessionEnded)

	if session.Active() {
		engine.Start(ctx)
	} else {
		log.Warn().Msg("not logged in, proximity alerts are disabled")
	}

	waitForStopSignal()
	return shutdown(server, engine, hub)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func openTokenStore(ctx context.Context, c config.Config) (sessions.Repo, func(), error) {
	path := c.GetTokenStorePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create token store folder: %w", err)
	}

	if c.GetTokenStore() == config.StoreSQLite {
		repo, err := sqliterepo.Open(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqliterepo.Open: %w", err)
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.Err(err).Msg("failed to close token store")
			}
		}, nil
	}
	return filerepo.New(path, c.GetTokenPassphrase()), func() {}, nil
}

// authenticate validates a restored session or logs in with configured credentials
func authenticate(ctx context.Context, c config.Config, client *gateway.Client) {
	session := client.Session()
	if session.Active() {
		// an expired access token is refreshed by the first authenticated call;
		// the identity check would end the session instead
		if exp := session.Expiry(); !exp.IsZero() && time.Now().After(exp) {
			log.Info().Time("expired", exp).Msg("stored access token expired")
			return
		}
		user, err := client.Me(ctx)
		if err != nil {
			log.Err(err).Msg("stored session is not valid")
			return
		}
		log.Info().Str("user", user.DisplayName()).Msg("session restored")
		return
	}

	if c.GetUsername() == "" || c.GetPassword() == "" {
		return
	}
	user, err := client.Login(ctx, c.GetUsername(), c.GetPassword())
	if err != nil {
		log.Err(err).Str("username", c.GetUsername()).Msg("login failed")
		return
	}
	if user != nil {
		log.Info().Str("user", user.DisplayName()).Msg("logged in")
	}
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("browser bridge listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Err(err).Str("addr", server.Addr).Msg("browser bridge stopped")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server, engine *proximity.Engine, hub *browser.Hub) error {
	engine.Stop()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
