package services

import (
	"context"

	"orbitplan/backend/tasks-service/models"
	"orbitplan/backend/utils/logging"

	"github.com/sirupsen/logrus"
)

// Pipeline step names as reported in models.SideEffect.
const (
	StepPersist   = "persist"
	StepNotify    = "notify"
	StepLinkUsers = "link-users"
)

// sideEffect runs after the task itself has been stored. A failing step is
// reported and logged; it is neither retried nor rolled back, and later steps
// still run.
type sideEffect struct {
	name string
	run  func(ctx context.Context) error
}

func runSideEffects(ctx context.Context, taskID string, steps ...sideEffect) []models.SideEffect {
	report := make([]models.SideEffect, 0, len(steps)+1)
	report = append(report, models.SideEffect{Step: StepPersist, OK: true})

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			logging.Logger.WithFields(logrus.Fields{"taskId": taskID, "step": step.name}).
				Warnf("Event ID: SIDE_EFFECT_FAILED, Description: Task stored but %s failed: %v", step.name, err)
			report = append(report, models.SideEffect{Step: step.name, OK: false, Error: err.Error()})
			continue
		}
		report = append(report, models.SideEffect{Step: step.name, OK: true})
	}
	return report
}
