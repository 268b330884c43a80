// Package cli provides the initialization steps shared by the runner's
// subcommands.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"openclaw/internal/amqp"
	"openclaw/internal/config"
	applog "openclaw/internal/log"
	"openclaw/internal/runner"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the logger described by cfg, writing to w, and sets it
// as the default logger.
func SetupLogger(cfg *config.Config, w io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    w,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)
	return logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ResultPublishers returns the stdout publisher plus the AMQP publisher when
// AMQP is configured. A broker that cannot be reached is logged and skipped so
// the result is still printed. The cleanup function is never nil.
func ResultPublishers(cfg *config.Config, stdout io.Writer, logger *applog.Logger) ([]runner.Publisher, func()) {
	publishers := []runner.Publisher{runner.NewWriterPublisher(stdout)}
	cleanup := func() {}

	if cfg.AMQPURL == "" {
		logger.Debug("AMQP publishing disabled - no AMQP_URL provided")
		return publishers, cleanup
	}

	pub, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP publisher, continuing without it",
			applog.NewFields().WithError(err, applog.ErrorTypeNetwork).ToSlice()...)
		return publishers, cleanup
	}

	logger.Info("Initialized AMQP publisher",
		applog.FieldExchange, cfg.AMQPExchange,
		applog.FieldRoutingKey, cfg.AMQPRoutingKey)
	return append(publishers, pub), func() { pub.Close() }
}
