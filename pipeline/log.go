package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/iterkit/logger"
)

// Log passes values through and records every pull on l.
//
// Each consumption gets its own run_id. Values are logged at debug level
// with their index, exhaustion at debug level with the total count, and
// failures at error level. A nil logger disables logging.
func Log[T any](p *Pipeline[T], l *logger.Logger, stage string) *Pipeline[T] {
	if l == nil {
		return p
	}
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			runID := uuid.NewString()
			return &logIter[T]{
				source: p.create(ctx),
				log: l.WithStage(stage).WithFields(map[string]interface{}{
					logger.FieldRunID: runID,
				}),
			}
		},
	}
}

type logIter[T any] struct {
	source Iterator[T]
	log    *logger.Logger
	index  int
	done   bool
}

func (it *logIter[T]) Next(ctx context.Context) (T, bool, error) {
	val, ok, err := it.source.Next(ctx)
	switch {
	case err != nil:
		it.log.Error("pull failed", logger.MergeWithError(logger.Fields(
			logger.FieldEvent, logger.EventError,
			logger.FieldIndex, it.index,
		), err))
	case !ok:
		if !it.done {
			it.done = true
			it.log.Debug("exhausted", logger.Fields(
				logger.FieldEvent, logger.EventExhausted,
				logger.FieldCount, it.index,
			))
		}
	default:
		if it.log.DebugEnabled() {
			it.log.Debug("value", logger.Fields(
				logger.FieldEvent, logger.EventValue,
				logger.FieldIndex, it.index,
				logger.FieldValue, val,
			))
		}
		it.index++
	}
	return val, ok, err
}

func (it *logIter[T]) Close() error { return it.source.Close() }
