package utils

import (
	"time"

	"go.uber.org/zap"

	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// Logging is a decorator that logs the duration and outcome of every
// transaction with the context logger.
type Logging struct{}

var _ gate.Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check logs the result of the next checker.
func (l Logging) Check(ctx gate.Context, store gate.KVStore, tx gate.Tx, next gate.Checker) (*gate.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	logOutcome(ctx, "check", gate.GetPath(tx), start, err)
	return res, err
}

// Deliver logs the result of the next deliverer.
func (l Logging) Deliver(ctx gate.Context, store gate.KVStore, tx gate.Tx, next gate.Deliverer) (*gate.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	logOutcome(ctx, "deliver", gate.GetPath(tx), start, err)
	return res, err
}

func logOutcome(ctx gate.Context, phase, path string, start time.Time, err error) {
	logger := gate.GetLogger(ctx).With(
		zap.String("phase", phase),
		zap.String("path", path),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		logger.Info("transaction failed",
			zap.Uint32("code", errors.Code(err)),
			zap.Error(err))
		return
	}
	logger.Debug("transaction processed")
}
