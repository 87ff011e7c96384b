package http

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// TransportConfig configures the retrying transport.
type TransportConfig struct {
	// RetryMax enables status retries when > 0.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       carepoint.Logger
	Debug        bool
}

// NewTransport returns an *http.Client backed by go-retryablehttp.
//
// Only 429 and 5xx responses (except 501) are retried, and only when
// RetryMax > 0. Transport errors are returned on the first occurrence: the
// cold-start policy in Client.Do owns those.
func NewTransport(cfg TransportConfig) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.CheckRetry = statusRetryPolicy(cfg.RetryMax)
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if cfg.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = cfg.RetryWaitMin
	}

	if cfg.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = cfg.RetryWaitMax
	}

	if cfg.Debug && cfg.Logger != nil {
		retryClient.Logger = &leveledLogger{logger: cfg.Logger}
	}

	return retryClient.StandardClient()
}

func statusRetryPolicy(retryMax int) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}

		if retryMax <= 0 || err != nil || resp == nil {
			return false, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return true, nil
		}

		if resp.StatusCode >= http.StatusInternalServerError && resp.StatusCode != http.StatusNotImplemented {
			return true, nil
		}

		return false, nil
	}
}

// leveledLogger adapts carepoint.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger carepoint.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
