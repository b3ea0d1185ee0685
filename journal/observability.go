package journal

import (
	"context"
	"math"
	"time"
)

// logQueryWithDuration logs an executed SQL statement at debug level.
func (j *Journal) logQueryWithDuration(ctx context.Context, action, query string, duration time.Duration) {
	args := []any{
		logAttrQuery, query,
		logAttrDurationMS, toMilliseconds(duration),
	}

	if j.logger != nil {
		j.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if j.contextualLogger != nil {
		j.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logWarn logs a non-critical failure.
func (j *Journal) logWarn(ctx context.Context, msg string, args ...any) {
	if j.logger != nil {
		j.logger.Warn(msg, args...)
	}

	if j.contextualLogger != nil {
		j.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
