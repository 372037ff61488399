// Command tidewatch polls NOAA tide and temperature stations and NDBC buoys,
// serves the readings over HTTP, and optionally republishes them to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/lmittmann/tint"

	"tidewatch/internal/config"
	"tidewatch/internal/mqttpub"
	"tidewatch/internal/poll"
	"tidewatch/internal/server"
	"tidewatch/pkg/coops"
	"tidewatch/pkg/ndbc"
	"tidewatch/pkg/stations"
)

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`

	// StationsFile points at a TOML file of station entries.
	StationsFile string `split_words:"true"`

	// DirectoryTTL bounds how long station directory listings are cached.
	DirectoryTTL time.Duration `split_words:"true" default:"6h"`

	// UsePostgres persists wizard-created entries in postgres, configured
	// through the PG* environment variables.
	UsePostgres bool `split_words:"true"`

	MQTTBroker string `envconfig:"MQTT_BROKER"`
	MQTTPort   int    `envconfig:"MQTT_PORT" default:"1883"`

	Debug bool
}

func main() {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(env.Debug)
	slog.SetDefault(logger)

	if err := run(env, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(env Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients := poll.Clients{
		COOPS: coops.NewClient(),
		NDBC:  ndbc.NewClient(),
	}
	directory := stations.NewDirectory(env.DirectoryTTL)
	manager := poll.NewManager(logger)

	var pub *mqttpub.Publisher
	if env.MQTTBroker != "" {
		pub = mqttpub.New(env.MQTTBroker, env.MQTTPort, "tidewatch", logger)
		if err := pub.Connect(); err != nil {
			// The client keeps retrying in the background.
			logger.Warn("mqtt broker unreachable", "error", err)
		}
	}

	addEntry := func(e config.Entry) error {
		c := poll.ForEntry(e, clients, logger)
		if pub != nil {
			c.OnUpdate(pub.PublishStates)
		}
		return manager.Add(c)
	}

	var store *config.Store
	if env.UsePostgres {
		var err error
		if store, err = config.OpenPostgres(); err != nil {
			return err
		}
	}

	if env.StationsFile != "" {
		entries, err := config.Load(env.StationsFile)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := addFileEntry(ctx, e, directory, addEntry, logger); err != nil {
				return err
			}
		}
	}

	if store != nil {
		entries, err := store.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := addEntry(e); err != nil {
				logger.Warn("skipping stored entry", "entry", e.ID(), "error", err)
			}
		}
	}

	validator := &config.Validator{
		Directory: directory,
		Exists: func(e config.Entry) bool {
			_, ok := manager.Coordinator(e.ID())
			return ok
		},
	}

	manager.Start(ctx)

	srv := &server.Server{
		Manager:   manager,
		Directory: directory,
		Validator: validator,
		COOPS:     clients.COOPS,
		Logger:    logger,
		Register: func(e config.Entry) error {
			if store != nil {
				if err := store.Save(e); err != nil {
					return err
				}
			}
			return addEntry(e)
		},
	}

	r := mux.NewRouter().StrictSlash(true)
	srv.Routes(r.PathPrefix(env.Prefix).Subrouter())

	httpSrv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, r),
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", httpSrv.Addr, "prefix", env.Prefix)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	manager.Stop()
	if pub != nil {
		pub.Disconnect()
	}
	logger.Info("shut down")
	return nil
}

// addFileEntry validates a TOML entry before polling starts. A directory
// outage at boot is tolerated so a flaky network cannot keep the daemon
// down; the entry just polls without coordinates.
func addFileEntry(ctx context.Context, e config.Entry, directory *stations.Directory, add func(config.Entry) error, logger *slog.Logger) error {
	v := &config.Validator{Directory: directory}
	switch code := v.Validate(ctx, &e); code {
	case config.CodeOK:
	case config.CodeCannotConnect:
		logger.Warn("station directory unreachable, adding entry unverified", "entry", e.ID())
	default:
		return fmt.Errorf("entry %s: %s", e.ID(), code)
	}
	return add(e)
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h)
}
