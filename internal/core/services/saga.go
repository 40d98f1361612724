package services

import (
	"context"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// sagaStep pairs an action with the compensation that undoes it.
// Compensation runs when a LATER step fails; a step whose own failure
// leaves nothing behind carries a nil compensate.
type sagaStep struct {
	stage      string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSaga executes steps in order. When a step fails, the compensations
// of all previously completed steps run in reverse order and the step's
// failure is returned as a StoreError. A failed compensation is not
// compensated further: it is reported as a RollbackError instead, so
// callers can tell "rolled back cleanly" from "left inconsistent".
func runSaga(ctx context.Context, subjectID func() string, steps []sagaStep) error {
	for i, step := range steps {
		err := step.run(ctx)
		if err == nil {
			continue
		}

		logger.Warn("%s failed: %v, compensating %d prior step(s)", step.stage, err, i)
		for j := i - 1; j >= 0; j-- {
			if steps[j].compensate == nil {
				continue
			}
			if rbErr := steps[j].compensate(ctx); rbErr != nil {
				rollback := &domain.RollbackError{
					Stage:       step.stage,
					DocumentID:  subjectID(),
					Err:         err,
					RollbackErr: rbErr,
				}
				logger.Error("rollback failed, stores left inconsistent: %v", rollback)
				return rollback
			}
		}
		return &domain.StoreError{Stage: step.stage, Err: err}
	}
	return nil
}
