package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/promonotifier/config"
	"sjsage522/promonotifier/internal/promo"
	"sjsage522/promonotifier/logger"
	apperrors "sjsage522/promonotifier/pkg/errors"
	"sjsage522/promonotifier/services/cache"
	"sjsage522/promonotifier/services/publisher"
	"sjsage522/promonotifier/services/state"
	"sjsage522/promonotifier/services/worker"
)

// Version is the notifier version, reported to Home Assistant as sw_version
var Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:          "promonotifier",
	Short:        "Honkai Impact 3rd promo code notifier",
	Long:         "Checks the Honkai Impact 3rd exchange rewards page twice a day and fires a Home Assistant device trigger when new codes appear.",
	SilenceUsage: true,
	RunE:         runNotifier,
}

func main() {
	// Load environment variables
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runNotifier(cmd *cobra.Command, _ []string) error {
	logger.Init()
	log := logger.Default
	printBanner()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Cleanup()

	w := newWorker(cfg, services)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().
			Str("url", cfg.URL).
			Dur("retry_delay", cfg.RetryDelay).
			Msg("Starting promo code worker")
		workerDone <- w.Start(ctx)
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		return nil
	case err := <-workerDone:
		return err
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfiguration("invalid configuration", err)
	}
	return cfg, nil
}

func printBanner() {
	if !logger.IsInfoEnabled() {
		return
	}
	title := fmt.Sprintf("Honkai Impact 3rd promo code notifier v%s", Version)
	pad := (80 - len(title)) / 2
	fmt.Printf("\n%s%s\n\n", strings.Repeat(" ", pad), title)
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     state.Store
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.ForPublisher().Warn().Err(err).Msg("Failed to close publisher")
		}
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	store := state.NewFileStore(cfg.StateDir, cfg.StateFile)
	logger.ForDetector().Debug().Str("path", store.Path()).Msg("Using state file")
	services := &Services{
		Store: store,
	}

	if cfg.MemcacheAddr != "" {
		memcache := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcache.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Msg("Memcache unavailable, rate limit blocking disabled")
		} else {
			services.Cache = memcache
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	logger.Info("Home Assistant MQTT connection: %s@%s", cfg.HassUser, cfg.HassHost)
	hass := publisher.NewHassPublisher(publisher.HassConfig{
		Broker:          cfg.HassBroker(),
		Username:        cfg.HassUser,
		Password:        cfg.HassPass,
		DiscoveryPrefix: cfg.HassDiscoveryPrefix,
		Version:         Version,
		Timeout:         cfg.HTTPTimeout,
	})
	if err := hass.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to set up Home Assistant trigger: %w", err)
	}
	publishers := []publisher.Publisher{hass}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err := redisPublisher.Ping(ctx); err != nil {
			logger.ForPublisher().Warn().Err(err).Msg("Redis unavailable, stream mirror disabled")
			redisPublisher.Close()
		} else {
			publishers = append(publishers, redisPublisher)
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	services.Publisher = publisher.NewMultiPublisher(publishers...)
	return services, nil
}

// newWorker wires the fetcher, detector and publisher into a worker
func newWorker(cfg *config.Config, services *Services) *worker.Worker {
	fetcher := promo.NewFetcher(promo.FetcherConfig{
		URL:       cfg.URL,
		Timeout:   cfg.HTTPTimeout,
		BlockTime: cfg.RateLimitBlock,
	}, services.Cache)

	return worker.NewWorker(
		fetcher,
		promo.NewDetector(services.Store),
		services.Publisher,
		worker.SystemClock{},
		cfg.RetryDelay,
	)
}
