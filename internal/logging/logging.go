package logging

import (
	"os"

	"go.uber.org/zap"
)

// New builds the service logger. LOG_LEVEL=debug switches to the
// development config, everything else gets production JSON output.
func New(service string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger.With(zap.String("service", service))
}
