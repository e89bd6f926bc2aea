// Command giftsvc runs the gift registry API and its maintenance tasks.
//
//	giftsvc serve     start the HTTP API
//	giftsvc seed      insert one sample dataset and exit
//	giftsvc migrate   create or update the schema and exit
//	giftsvc version   print build information
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-gift-registry/docs"
	"github.com/tbourn/go-gift-registry/internal/config"
	httpapi "github.com/tbourn/go-gift-registry/internal/http"
	"github.com/tbourn/go-gift-registry/internal/observability"
	"github.com/tbourn/go-gift-registry/internal/repo"
	"github.com/tbourn/go-gift-registry/internal/seed"
	"github.com/tbourn/go-gift-registry/internal/sysutil"
)

//	@title			Gift Registry API
//	@version		1.0
//	@description	CRUD API for wedding gift registries: users, events, categories, giftlists, gifts and wishlists, plus a sample-data seeder.
//	@license.name	MIT
//	@BasePath		/api

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

const purgeInterval = time.Hour

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "giftsvc",
		Short:         "Gift registry API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("giftsvc %s (%s)\n", appVersion(), commit)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE:  runMigrate,
	})

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert one sample dataset",
		Long: `Generates and inserts users, an event, categories, giftlists,
default and derived gifts and a wishlist. Existing categories are reused
by name. Flags override the SEED_* environment variables.`,
		RunE: runSeed,
	}
	seedCmd.Flags().Int("users", 0, "users to create")
	seedCmd.Flags().Int("categories", 0, "categories to draw")
	seedCmd.Flags().Int("giftlists", 0, "giftlists per category")
	seedCmd.Flags().Int("default-gifts", 0, "default gifts per giftlist")
	seedCmd.Flags().Int("derived-gifts", 0, "gifts derived from defaults")
	seedCmd.Flags().Int("wishlist-gifts", 0, "gifts linked to the wishlist")
	seedCmd.Flags().Uint64("random-seed", 0, "fixed generator seed (0 = random)")
	seedCmd.Flags().Bool("strict", false, "fail on the first invalid record")
	root.AddCommand(seedCmd)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("giftsvc failed")
		os.Exit(1)
	}
}

func appVersion() string {
	return sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
}

// bootstrap loads config, installs the logger and opens a migrated store.
func bootstrap() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stdout)

	db, err := repo.Open(cfg.DB)
	if err != nil {
		return cfg, nil, fmt.Errorf("open store: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return cfg, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("schema up to date")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	applySeedFlags(cmd, &cfg.Seed)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion())
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	report, err := seed.NewSeeder(db, seed.NewGenerator(cfg.Seed)).Run(ctx)
	return errors.Join(err, writeReport(cmd.OutOrStdout(), report))
}

// writeReport prints report as indented JSON. A nil report prints nothing.
func writeReport(w io.Writer, report *seed.Report) error {
	if report == nil {
		return nil
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func applySeedFlags(cmd *cobra.Command, s *config.SeedConfig) {
	f := cmd.Flags()
	ints := map[string]*int{
		"users":          &s.Users,
		"categories":     &s.Categories,
		"giftlists":      &s.GiftlistsPerCategory,
		"default-gifts":  &s.DefaultGiftsPerGiftlist,
		"derived-gifts":  &s.DerivedGifts,
		"wishlist-gifts": &s.WishlistGifts,
	}
	for name, dst := range ints {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	if f.Changed("random-seed") {
		s.RandomSeed, _ = f.GetUint64("random-seed")
	}
	if f.Changed("strict") {
		s.Strict, _ = f.GetBool("strict")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion())
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	go purgeIdempotency(ctx, repo.NewIdempotencyStore(db, cfg.IdempotencyTTL))

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, seed.NewSeeder(db, seed.NewGenerator(cfg.Seed)), cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("version", appVersion()).
			Bool("swagger", cfg.SwaggerEnabled).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// purgeIdempotency drops expired replay records until ctx ends.
func purgeIdempotency(ctx context.Context, store *repo.IdempotencyStore) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		n, err := store.Purge(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn().Err(err).Msg("idempotency purge failed")
		case n > 0:
			log.Debug().Int64("rows", n).Msg("idempotency records purged")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
