// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig is returned when the scanner configuration is unusable
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrScanInProgress is returned by RunOnce while another scan runs
	ErrScanInProgress = errors.New("overdue scan already in progress")
)

// OverdueSource lists overdue transactions across owners
type OverdueSource interface {
	FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]finance.Transaction, error)
}

// OverdueGauge receives the size of the last scan
type OverdueGauge interface {
	RecordOverdue(ctx context.Context, count int)
}

// OverdueScannerConfig holds scanner settings
type OverdueScannerConfig struct {
	Enabled    bool
	Schedule   string // standard 5-field cron expression or descriptor
	Limit      int
	JobTimeout time.Duration
}

// DefaultOverdueScannerConfig returns the daily 06:00 scan
func DefaultOverdueScannerConfig() OverdueScannerConfig {
	return OverdueScannerConfig{
		Enabled:    true,
		Schedule:   "0 6 * * *",
		Limit:      500,
		JobTimeout: 5 * time.Minute,
	}
}

// ScanResult summarizes one scan
type ScanResult struct {
	AsOf        time.Time
	Count       int
	Owners      int
	Outstanding map[string]decimal.Decimal // by currency
	Truncated   bool
}

// OverdueScanner publishes TransactionOverdueDetected for every unsettled
// transaction past its due date. Transactions are never modified; overdue
// stays a derived status.
type OverdueScanner struct {
	config    OverdueScannerConfig
	source    OverdueSource
	publisher shared.EventPublisher
	gauge     OverdueGauge
	logger    *zap.Logger
	now       func() time.Time

	cron      *cron.Cron
	scanMu    sync.Mutex
	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewOverdueScanner validates the schedule and builds the scanner. gauge may be nil.
func NewOverdueScanner(
	config OverdueScannerConfig,
	source OverdueSource,
	publisher shared.EventPublisher,
	gauge OverdueGauge,
	logger *zap.Logger,
) (*OverdueScanner, error) {
	if config.Limit <= 0 {
		config.Limit = DefaultOverdueScannerConfig().Limit
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultOverdueScannerConfig().JobTimeout
	}
	if config.Schedule == "" {
		config.Schedule = DefaultOverdueScannerConfig().Schedule
	}
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, config.Schedule, err)
	}

	cronLogger := cronLogAdapter{logger: logger.Named("cron")}
	return &OverdueScanner{
		config:    config,
		source:    source,
		publisher: publisher,
		gauge:     gauge,
		logger:    logger,
		now:       time.Now,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}, nil
}

// Start registers the scan job and starts the cron runner
func (s *OverdueScanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info("Overdue scanner is disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(s.config.Schedule, func() { s.runScheduled(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("failed to add overdue scan job: %w", err)
	}
	s.cancel = cancel
	s.isRunning = true
	s.cron.Start()

	s.logger.Info("Overdue scanner started",
		zap.String("schedule", s.config.Schedule),
		zap.Int("limit", s.config.Limit),
	)
	return nil
}

// Stop halts the cron runner and waits for a running scan
func (s *OverdueScanner) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("Overdue scanner stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue scanner stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the cron runner is active
func (s *OverdueScanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *OverdueScanner) runScheduled(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
		s.logger.Error("Overdue scan failed", zap.Error(err))
	}
}

// RunOnce scans immediately. Publishing failures are logged and do not
// stop the scan.
func (s *OverdueScanner) RunOnce(ctx context.Context) (*ScanResult, error) {
	if !s.scanMu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.scanMu.Unlock()

	start := time.Now()
	asOf := s.now().UTC()
	overdue, err := s.source.FindOverdue(ctx, asOf, s.config.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue transactions: %w", err)
	}

	result := &ScanResult{
		AsOf:        asOf,
		Count:       len(overdue),
		Outstanding: make(map[string]decimal.Decimal),
		Truncated:   len(overdue) >= s.config.Limit,
	}
	owners := make(map[string]struct{})
	published := 0
	for i := range overdue {
		txn := &overdue[i]
		owners[txn.OwnerID.String()] = struct{}{}
		currency := string(txn.Currency)
		result.Outstanding[currency] = result.Outstanding[currency].Add(txn.OutstandingAmount())

		if err := s.publisher.Publish(ctx, finance.NewTransactionOverdueDetectedEvent(txn, asOf)); err != nil {
			s.logger.Warn("Failed to publish overdue event",
				zap.String("transaction_id", txn.ID.String()),
				zap.String("owner_id", txn.OwnerID.String()),
				zap.Error(err),
			)
			continue
		}
		published++
	}
	result.Owners = len(owners)

	if s.gauge != nil {
		s.gauge.RecordOverdue(ctx, result.Count)
	}

	fields := []zap.Field{
		zap.Time("as_of", asOf),
		zap.Int("overdue", result.Count),
		zap.Int("owners", result.Owners),
		zap.Int("published", published),
		zap.Bool("truncated", result.Truncated),
		zap.Duration("duration", time.Since(start)),
	}
	for currency, amount := range result.Outstanding {
		fields = append(fields, zap.String("outstanding_"+currency, amount.StringFixed(2)))
	}
	s.logger.Info("Overdue scan completed", fields...)
	return result, nil
}

// cronLogAdapter routes cron's key/value logging to zap
type cronLogAdapter struct {
	logger *zap.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
