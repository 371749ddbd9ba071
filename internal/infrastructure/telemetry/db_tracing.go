package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls database spans
type DBTracingConfig struct {
	Enabled         bool
	DBSystem        string        // "postgresql" or "sqlite"
	SlowQueryThresh time.Duration // default 200ms
	// IncludeVariables puts bound values into db.statement. Off by default:
	// statements carry client names and amounts.
	IncludeVariables bool
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that flag
// slow statements on the active span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThresh) }

	// after callbacks run before otelgorm ends its span
	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("books_timing:before_create", before),
		cb.Query().Before("gorm:query").Register("books_timing:before_query", before),
		cb.Update().Before("gorm:update").Register("books_timing:before_update", before),
		cb.Delete().Before("gorm:delete").Register("books_timing:before_delete", before),
		cb.Row().Before("gorm:row").Register("books_timing:before_row", before),
		cb.Raw().Before("gorm:raw").Register("books_timing:before_raw", before),
		cb.Create().After("gorm:create").Before("otel:after_create").Register("books_timing:after_create", after),
		cb.Query().After("gorm:query").Before("otel:after_query").Register("books_timing:after_query", after),
		cb.Update().After("gorm:update").Before("otel:after_update").Register("books_timing:after_update", after),
		cb.Delete().After("gorm:delete").Before("otel:after_delete").Register("books_timing:after_delete", after),
		cb.Row().After("gorm:row").Before("otel:after_row").Register("books_timing:after_row", after),
		cb.Raw().After("gorm:raw").Before("otel:after_raw").Register("books_timing:after_raw", after),
	); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
