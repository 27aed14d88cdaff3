package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type slowQueryStartKey struct{}

type slowQueryStart struct {
	sql   string
	start time.Time
}

// slowQueryTracer logs queries that take longer than threshold at warn level.
// It runs in every environment, unlike the local tracelog tracer.
type slowQueryTracer struct {
	logger    *zerolog.Logger
	threshold time.Duration
	now       func() time.Time
}

func newSlowQueryTracer(logger *zerolog.Logger, threshold time.Duration) *slowQueryTracer {
	return &slowQueryTracer{logger: logger, threshold: threshold, now: time.Now}
}

// TraceQueryStart implements pgx.QueryTracer.
func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, slowQueryStartKey{}, slowQueryStart{sql: data.SQL, start: t.now()})
}

// TraceQueryEnd implements pgx.QueryTracer.
func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	started, ok := ctx.Value(slowQueryStartKey{}).(slowQueryStart)
	if !ok {
		return
	}

	elapsed := t.now().Sub(started.start)
	if elapsed <= t.threshold {
		return
	}

	event := t.logger.Warn().
		Str("sql", started.sql).
		Dur("duration", elapsed).
		Dur("threshold", t.threshold).
		Str("command_tag", data.CommandTag.String())
	if data.Err != nil {
		event = event.Err(data.Err)
	}
	event.Msg("slow query")
}
