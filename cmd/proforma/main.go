package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lotline/proforma/internal/config"
	"github.com/lotline/proforma/internal/projection"
	"github.com/lotline/proforma/internal/server"
	"github.com/lotline/proforma/internal/store"
	"github.com/lotline/proforma/pkg/constants"
	"github.com/lotline/proforma/pkg/output"
	"github.com/lotline/proforma/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// parseContainers parses a comma-separated list of container IDs.
func parseContainers(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid container ID %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to project definition file")
	source := flag.String("source", constants.SourceYAML, "data source: yaml, postgres")
	projectID := flag.Int("project", 0, "project ID (required for the postgres source)")
	containersFlag := flag.String("containers", "", "comma-separated container IDs to filter by")
	includeFinancing := flag.Bool("include-financing", true, "include debt service in the projection")
	discountRateFlag := flag.Float64("discount-rate", -1, "discount rate override (annual percent)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP server instead of a one-shot projection")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flag.Parse()

	if *serve {
		runServer(*serverConfigLocation, *logLevel)
		return
	}

	var (
		conf      *config.Configuration
		providers projection.Providers
		logConf   config.LoggingConfig
		outConf   config.OutputConfig
	)

	switch *source {
	case constants.SourceYAML:
		loaded, err := config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load project definition at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			os.Exit(1)
		}
		conf = loaded
		providers = config.NewSource(conf).Providers()
		logConf = conf.Logging
		outConf = conf.Output
	case constants.SourcePostgres:
		// DSN comes from the environment; a .env file is honored when present.
		_ = godotenv.Load()
	default:
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid source %s\"}\n", *source)
		os.Exit(1)
	}

	logger, err := initializeLogger(logConf, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *source == constants.SourcePostgres {
		dsn := os.Getenv(constants.DatabaseURLEnv)
		if dsn == "" {
			logger.Fatal(fmt.Sprintf("%s is not set", constants.DatabaseURLEnv),
				zap.String("op", "main"),
			)
		}
		db, err := store.New(context.Background(), dsn, logger)
		if err != nil {
			logger.Fatal("failed to connect to database",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer db.Close()
		providers = db.Providers()
	}

	outputFormat := outConf.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if conf != nil {
		for _, warning := range validation.ValidateConfiguration(conf) {
			logger.Warn("Configuration warning: "+warning,
				zap.String("op", "main"),
			)
		}
	}

	containerIDs, err := parseContainers(*containersFlag)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	req := projection.Request{
		ProjectID:        *projectID,
		ContainerIDs:     containerIDs,
		IncludeFinancing: *includeFinancing,
	}
	if *discountRateFlag >= 0 {
		req.DiscountRateOverride = discountRateFlag
	}

	engine := projection.NewEngine(logger, providers)
	proj, err := engine.Project(context.Background(), req)
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, proj)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, proj)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(os.Stdout, proj); err != nil {
			logger.Fatal("failed to encode projection",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

func runServer(configLocation, logLevelOverride string) {
	cfg, err := server.LoadConfig(configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server config\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg.Logging, logLevelOverride)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	handler := server.NewHandler(logger, cfg.UploadSizeBytes(), version)
	logger.Info("listening on "+cfg.Address,
		zap.String("op", "main"),
	)
	if err := http.ListenAndServe(cfg.Address, handler); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
