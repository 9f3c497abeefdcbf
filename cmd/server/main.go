package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nayab-Gohar-95/llm-saas-backend/auth"
	"github.com/Nayab-Gohar-95/llm-saas-backend/cache"
	"github.com/Nayab-Gohar-95/llm-saas-backend/chat"
	"github.com/Nayab-Gohar-95/llm-saas-backend/internal/config"
	"github.com/Nayab-Gohar-95/llm-saas-backend/llm"
	"github.com/Nayab-Gohar-95/llm-saas-backend/messages"
	fakemessagerepo "github.com/Nayab-Gohar-95/llm-saas-backend/messages/repofake"
	"github.com/Nayab-Gohar-95/llm-saas-backend/server"
	"github.com/Nayab-Gohar-95/llm-saas-backend/store/postgres"
	tenantrepofakes "github.com/Nayab-Gohar-95/llm-saas-backend/tenants/repofakes"
	"github.com/Nayab-Gohar-95/llm-saas-backend/token"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tracking"
	fakeuserrepo "github.com/Nayab-Gohar-95/llm-saas-backend/users/repofake"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	if c.GetJWTSecret() == "" {
		return errors.New("SECRET_KEY must be set")
	}

	repos, messageRepo, closeStores, err := buildStores(c)
	if err != nil {
		return err
	}
	defer closeStores()

	codec := token.NewCodec(c.GetJWTSecret(), c.GetTokenIssuer())
	guard, err := auth.NewGuard(repos, codec, c.GetAccessTokenTTL())
	if err != nil {
		return err
	}

	provider := buildProvider(c)
	log.Info().Str("provider", provider.Name()).Msg("generation provider selected")

	recorder, err := buildRecorder(c)
	if err != nil {
		return err
	}
	defer recorder.Close()

	orchestratorOptions := []chat.OrchestratorOption{}
	if c.GetRedisURL() != "" {
		generationCache, err := cache.NewGenerationCache(c.GetRedisURL(), c.GetGenerationCacheTTL())
		if err != nil {
			return err
		}
		defer generationCache.Close()
		orchestratorOptions = append(orchestratorOptions, chat.WithCache(generationCache))
	}

	orchestrator, err := chat.NewOrchestrator(provider, messageRepo, recorder, chat.Params{
		Model:       c.GetLLMModel(),
		MaxTokens:   c.GetLLMMaxTokens(),
		Temperature: c.GetLLMTemperature(),
		Environment: c.GetEnv(),
	}, orchestratorOptions...)
	if err != nil {
		return err
	}

	srv, err := server.New(c, guard, repos, orchestrator)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildStores returns the repositories backed by Postgres when DATABASE_URL
// is set, or in-memory fakes for local development without a database.
func buildStores(c config.Config) (auth.Repos, messages.Repo, func(), error) {
	if c.GetDatabaseURL() == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory stores")
		repos := auth.Repos{
			Users:   fakeuserrepo.NewFakeUserRepo(),
			Tenants: tenantrepofakes.NewFakeTenantRepo(),
		}
		return repos, fakemessagerepo.NewFakeMessageRepo(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.NewDB(ctx, c.GetDatabaseURL())
	if err != nil {
		return auth.Repos{}, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return auth.Repos{}, nil, nil, fmt.Errorf("database ping failed: %w", err)
	}

	repos := auth.Repos{
		Users:   postgres.NewUserRepo(db),
		Tenants: postgres.NewTenantRepo(db),
	}
	return repos, postgres.NewMessageRepo(db), db.Close, nil
}

// buildProvider selects the live completion backend when an API key is
// configured, otherwise the deterministic mock.
func buildProvider(c config.Config) llm.Provider {
	if c.GetOpenAIAPIKey() == "" {
		return llm.NewMockProvider()
	}
	return llm.NewOpenAIProvider(llm.OpenAIConfig{
		BaseURL:        c.GetOpenAIBaseURL(),
		APIKey:         c.GetOpenAIAPIKey(),
		RequestTimeout: c.GetLLMRequestTimeout(),
	})
}

func buildRecorder(c config.Config) (tracking.Recorder, error) {
	if c.GetPostHogAPIKey() == "" {
		log.Warn().Msg("POSTHOG_API_KEY not set, inference tracking disabled")
		return tracking.NopRecorder{}, nil
	}
	return tracking.NewPostHogRecorder(c.GetPostHogAPIKey(), c.GetPostHogEndpoint())
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
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
