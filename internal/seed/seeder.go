package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/observability"
	"github.com/tbourn/go-gift-registry/internal/repo"
)

// ErrSeedInProgress is returned when Run is called while another pass of the
// same Seeder is still running.
var ErrSeedInProgress = errors.New("seed: a pass is already running")

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 100

// Seeder runs generation passes against a database. Passes are serialized
// per Seeder; the unique category key index guards against passes started
// by other processes.
type Seeder struct {
	DB        *gorm.DB
	Generator *Generator
	BatchSize int

	mu sync.Mutex
}

// NewSeeder returns a Seeder with the default batch size.
func NewSeeder(db *gorm.DB, gen *Generator) *Seeder {
	return &Seeder{DB: db, Generator: gen, BatchSize: DefaultBatchSize}
}

// Run fetches the stored categories, generates a graph on top of them and
// inserts it kind by kind in dependency order. A failed insert stops the
// pass; earlier kinds stay committed. The report is returned even on error
// when generation got far enough to produce one.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	if !s.mu.TryLock() {
		seedRuns.WithLabelValues("rejected").Inc()
		return nil, ErrSeedInProgress
	}
	defer s.mu.Unlock()

	ctx, end := observability.StartSpan(ctx, "seed.run")
	start := time.Now()
	report, err := s.run(ctx)
	end(err)
	if report != nil {
		observeReport(report)
	}
	lg := s.Generator.Log
	if err != nil {
		seedRuns.WithLabelValues("failed").Inc()
		lg.Error().Err(err).Dur("took", time.Since(start)).Msg("seed pass failed")
		return report, err
	}
	seedRuns.WithLabelValues("ok").Inc()
	lg.Info().
		Interface("inserted", report.Inserted).
		Interface("dropped", report.Dropped).
		Int("reused_categories", report.ReusedCategories).
		Dur("took", time.Since(start)).
		Msg("seed pass complete")
	return report, nil
}

func (s *Seeder) run(ctx context.Context) (*Report, error) {
	existing, err := repo.ListAllCategories(ctx, s.DB)
	if err != nil {
		return nil, fmt.Errorf("seed: fetch categories: %w", err)
	}
	graph, report, err := s.Generator.Generate(existing)
	if err != nil {
		return report, err
	}

	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	steps := []struct {
		kind   Kind
		insert func(context.Context) (int, error)
	}{
		{KindUser, batch(s.DB, graph.Users, size)},
		{KindEvent, batch(s.DB, graph.Events, size)},
		{KindCategory, batch(s.DB, graph.Categories, size)},
		{KindGiftlist, batch(s.DB, graph.Giftlists, size)},
		{KindDefaultGift, batch(s.DB, graph.DefaultGifts, size)},
		{KindDerivedGift, batch(s.DB, graph.DerivedGifts, size)},
		{KindWishlist, batch(s.DB, graph.Wishlists, size)},
		{KindWishlistGift, batch(s.DB, graph.WishlistGifts, size)},
	}
	for _, st := range steps {
		sctx, endStep := observability.StartSpan(ctx, "seed.insert", attribute.String("kind", string(st.kind)))
		n, err := st.insert(sctx)
		endStep(err)
		if err != nil {
			return report, fmt.Errorf("seed: insert %s: %w", st.kind, err)
		}
		report.Inserted[st.kind] = n
	}
	return report, nil
}

func batch[T any](db *gorm.DB, recs []T, size int) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		if err := repo.CreateBatch(ctx, db, recs, size); err != nil {
			return 0, err
		}
		return len(recs), nil
	}
}
