package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/monbattle/engine/internal/api"
	"github.com/monbattle/engine/internal/catalog"
	"github.com/monbattle/engine/internal/config"
	"github.com/monbattle/engine/internal/dispatcher"
	"github.com/monbattle/engine/internal/engine"
	"github.com/monbattle/engine/internal/handlers"
	"github.com/monbattle/engine/internal/influx"
	"github.com/monbattle/engine/internal/logging"
	"github.com/monbattle/engine/internal/monitor"
	intOtel "github.com/monbattle/engine/internal/otel"
	"github.com/monbattle/engine/internal/parser"
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/internal/session"
	"github.com/monbattle/engine/internal/storage"
	"github.com/monbattle/engine/internal/worker"

	"github.com/rs/zerolog"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "monbattle"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger serves the dispatcher and InfluxDB, which log through zerolog
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// BattleCtx tags every log line with the running battle
	BattleCtx = &logging.BattleContext{}

	SessionStartTime time.Time = time.Now()

	LogFile     *os.File
	MetricsFile *os.File
)

// options is everything buildServices reads from configuration.
type options struct {
	Battle          config.BattleConfig
	Storage         config.StorageConfig
	Influx          config.InfluxConfig
	LogsDir         string
	MonitorInterval time.Duration
	APIEnabled      bool
	ServerURL       string
	APIKey          string
}

func optionsFromConfig() options {
	return options{
		Battle:          config.GetBattleConfig(),
		Storage:         config.GetStorageConfig(),
		Influx:          config.GetInfluxConfig(),
		LogsDir:         config.GetString("logsDir"),
		MonitorInterval: config.GetDuration("monitor.interval"),
		APIEnabled:      config.GetBool("api.enabled"),
		ServerURL:       config.GetString("api.serverUrl"),
		APIKey:          config.GetString("api.apiKey"),
	}
}

// services is the wired application.
type services struct {
	opts       options
	catalog    *catalog.Catalog
	dispatcher *dispatcher.Dispatcher
	session    *session.Session
	backend    storage.Backend
	workers    *worker.Manager
	monitor    *monitor.Service
	influx     *influx.Manager
}

// setupLogging loads the config and builds the log chain. Without a log
// file the console gets the output.
func setupLogging(configDir string) {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(logging.Options{Level: "info"})
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}

	var err error
	LogFile, err = logging.OpenLogFile(config.GetString("logsDir"), AppName, SessionStartTime)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err)
	}

	var logOut io.Writer = os.Stderr
	if LogFile != nil {
		logOut = LogFile
	}
	ZLogger = logging.NewZerolog(logOut, config.GetString("logLevel"), BattleCtx)

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		MetricsFile, err = os.Create(filepath.Join(config.GetString("logsDir"),
			fmt.Sprintf("%s.%s.metrics.json", AppName, SessionStartTime.Format("20060102_150405"))))
		if err != nil {
			Logger.Error("Failed to create metrics file", "error", err)
		}
		otelConfig := intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
			MetricInterval: config.GetDuration("monitor.interval"),
		}
		if LogFile != nil {
			otelConfig.LogWriter = LogFile
		}
		if MetricsFile != nil {
			otelConfig.MetricWriter = MetricsFile
		}
		OTelProvider, err = intOtel.New(otelConfig)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	opts := logging.Options{
		Level:   config.GetString("logLevel"),
		Context: BattleCtx.Attrs,
	}
	if LogFile != nil {
		opts.File = LogFile
	}
	if OTelProvider != nil {
		opts.Provider = OTelProvider.LoggerProvider()
	}
	if config.GetBool("graylog.enabled") {
		gw, err := logging.NewGraylogWriter(config.GetString("graylog.address"))
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			opts.Graylog = gw
		}
	}
	SlogManager.Setup(opts)
	Logger = SlogManager.Logger()
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	return catalog.Load(os.DirFS(dir))
}

// buildServices wires storage, recording, the session and the command
// handlers onto one dispatcher.
func buildServices(opts options) (*services, error) {
	cat, err := loadCatalog(opts.Battle.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	seed := opts.Battle.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := rng.New(seed)
	Logger.Debug("Random source seeded", "seed", seed)

	eng := engine.New(cat, r, engine.Options{
		TrainerExpBonus: opts.Battle.TrainerExpBonus,
		DefaultReward:   opts.Battle.DefaultReward,
		WhiteoutPenalty: opts.Battle.WhiteoutPenalty,
	})

	backend, err := initStorage(opts)
	if err != nil {
		return nil, err
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(logging.Sampled(ZLogger, time.Second, 50)))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	svc := &services{opts: opts, catalog: cat, dispatcher: d, backend: backend}

	if opts.Influx.Enabled {
		svc.influx = influx.NewManager(ZLogger, opts.Influx,
			filepath.Join(opts.LogsDir, fmt.Sprintf("%s_influx_backup.log.gz", AppName)))
		if err := svc.influx.Connect(); err != nil {
			Logger.Error("Failed to connect to InfluxDB", "error", err)
			svc.influx = nil
		}
	}

	var uploader worker.Uploader
	if opts.APIEnabled {
		client := api.New(opts.ServerURL, opts.APIKey)
		if err := client.Healthcheck(); err != nil {
			Logger.Warn("Replay server is not reachable, uploads may fail", "url", opts.ServerURL, "error", err)
		}
		uploader = client
	}

	svc.workers = worker.NewManager(worker.Dependencies{
		Logger:   Logger,
		Influx:   svc.influx,
		Uploader: uploader,
	}, backend)
	svc.workers.RegisterHandlers(d)
	Logger.Info("Worker handlers registered with dispatcher")

	saves, _ := backend.(storage.Saver)
	svc.session, err = session.New(session.Dependencies{
		Catalog:       cat,
		Engine:        eng,
		RNG:           r,
		Recorder:      svc.workers,
		Saves:         saves,
		BattleContext: BattleCtx,
		Logger:        Logger,
	})
	if err != nil {
		svc.Close()
		return nil, err
	}

	p, err := parser.New(cat)
	if err != nil {
		svc.Close()
		return nil, err
	}
	handlers.NewService(handlers.Dependencies{
		Session: svc.session,
		Parser:  p,
		Logger:  Logger,
	}).Register(d)

	perf, _ := backend.(monitor.PerformanceRecorder)
	svc.monitor = monitor.NewService(monitor.Dependencies{
		Logger:     Logger,
		Dispatcher: d,
		Battles:    svc.session,
		Writes:     svc.workers,
		Recorder:   perf,
		Influx:     svc.influx,
		StatusFile: filepath.Join(opts.LogsDir, "status.txt"),
		Interval:   opts.MonitorInterval,
	})
	if err := svc.monitor.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
	}

	return svc, nil
}

// Close drains queued records and releases every sink.
func (s *services) Close() {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.dispatcher.Close()
	if err := s.backend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
	}
	if s.influx != nil {
		if err := s.influx.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB", "error", err)
		}
	}
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shut down OTel", "error", err)
		}
	}
	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "flush logs: %v\n", err)
	}
	for _, f := range []*os.File{LogFile, MetricsFile} {
		if f != nil {
			f.Close()
		}
	}
}

func usage(out io.Writer) {
	fmt.Fprintf(out, "%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
	fmt.Fprintln(out, "usage: monbattle [play | export <battleId>... | catalog | version]")
	fmt.Fprintln(out, "The config file is read from $MONBATTLE_CONFIG_DIR or the working directory.")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	configDir := os.Getenv("MONBATTLE_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	setupLogging(configDir)
	defer shutdown()

	command := "play"
	if len(args) > 0 {
		command = strings.ToLower(args[0])
		args = args[1:]
	}

	switch command {
	case "version":
		fmt.Printf("%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
		return 0
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	case "catalog":
		cat, err := loadCatalog(config.GetBattleConfig().CatalogDir)
		if err != nil {
			Logger.Error("Failed to load catalog", "error", err)
			return 1
		}
		printCatalog(cat, os.Stdout)
		return 0
	case "play", "export":
	default:
		usage(os.Stderr)
		return 2
	}

	svc, err := buildServices(optionsFromConfig())
	if err != nil {
		Logger.Error("Failed to start", "error", err)
		return 1
	}
	defer svc.Close()

	if command == "export" {
		err = runExport(svc, args, os.Stdout)
	} else {
		err = runPlay(svc, os.Stdin, os.Stdout)
	}
	if err != nil {
		Logger.Error("Command failed", "command", command, "error", err)
		return 1
	}
	return 0
}
