// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimiro1/banner"

	"fria/internal/ai"
	"fria/internal/config"
	httptransport "fria/internal/http"
	"fria/internal/infra"
	"fria/internal/logging"
	"fria/internal/maps"
	"fria/internal/modules/aiusage"
	"fria/internal/modules/form"
	"fria/internal/modules/intake"
	"fria/internal/modules/location"
	"fria/internal/modules/profile"
	"fria/internal/modules/towrequest"
	"fria/internal/speech"
)

const (
	version       = "0.3.0"
	formMirrorTTL = 72 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	logging.SetRedaction(cfg.Log.RedactPII)

	banner.Init(os.Stdout, true, true, bytes.NewBufferString("{{ .Title \"FRIA\" \"\" 0 }}\nVersion: "+version+"\n"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fatal := func(msg string, err error) {
		log.Error(msg, "error", err)
		os.Exit(1)
	}

	var verifier infra.TokenVerifier
	if cfg.HTTP.RequireAuth {
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			fatal("firebase init", err)
		}
	} else {
		log.Warn("auth disabled; every caller is anonymous")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		fatal("connect postgres", err)
	}
	defer dbPool.Close()

	var formStore form.Store
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Warn("redis unavailable; form mirror off and fixes read from postgres", "error", err)
	} else {
		defer redisClient.Close()
		formStore = form.NewRedisStore(redisClient, formMirrorTTL)
	}

	var llm ai.LLM
	if cfg.AI.APIKey() == "" {
		log.Warn("no model api key; questions use canned copy and tow reasons a heuristic", "provider", cfg.AI.Provider)
	} else {
		base, closeLLM, err := ai.NewFromConfig(ctx, cfg.AI, logging.Component(log, "llm"))
		if err != nil {
			fatal("init llm", err)
		}
		defer closeLLM()
		llm = base
		if cfg.AI.Metered {
			llm = aiusage.NewMeteredLLM(base, aiusage.NewService(aiusage.NewStore(dbPool)))
		}
	}

	var (
		geocoder intake.Geocoder
		lookup   *maps.GeocodeService
	)
	if cfg.Maps.APIKey == "" {
		log.Warn("no maps api key; GPS turns ask for a typed address")
	} else {
		lookup, err = maps.NewGeocodeService(cfg.Maps.APIKey, maps.Options{
			Language: cfg.Maps.Language,
			Region:   cfg.Maps.Region,
			Timeout:  cfg.Maps.Timeout,
		}, logging.Component(log, "maps"))
		if err != nil {
			fatal("init maps", err)
		}
		geocoder = lookup
	}

	var transcriber speech.Transcriber = speech.Disabled{}
	if cfg.Deepgram.APIKey != "" {
		transcriber = speech.NewDeepgramTranscriber(speech.Config{
			APIKey: cfg.Deepgram.APIKey,
			Model:  cfg.Deepgram.Model,
		}, log)
	}

	formSvc, err := form.NewService(formStore, cfg.Intake.RequiredFields)
	if err != nil {
		fatal("intake required fields", err)
	}
	router, err := intake.NewRouter(formSvc.ListRequired())
	if err != nil {
		fatal("intake router", err)
	}

	intakeLog := logging.Component(log, "intake")
	towSvc := towrequest.NewService(towrequest.NewStore(dbPool))
	intakeSvc := intake.NewService(intake.ServiceDeps{
		Engine:    intake.NewEngine(router, llm, geocoder, intakeLog),
		Repo:      intake.NewStore(dbPool),
		Profiles:  profile.NewService(profile.NewStore(dbPool), profile.Default, logging.Component(log, "profile")),
		Forms:     formSvc,
		Locations: location.NewService(location.NewStore(dbPool, redisClient)),
		Tows:      towSvc,
		Log:       intakeLog,
	})

	deps := httptransport.ServerDeps{
		Intake:      intakeSvc,
		Forms:       formSvc,
		Tows:        towSvc,
		Transcriber: transcriber,
		Verifier:    verifier,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         logging.Component(log, "http"),
	}
	if lookup != nil {
		deps.Geocoder = lookup
	}
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewServer(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "error", err)
		}
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr, "required_fields", cfg.Intake.RequiredFields)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("http server", err)
	}
}
