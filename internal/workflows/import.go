package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/mtlmap/internal/core/domain"
)

// ImportInput is the input for ImportLayerWorkflow.
type ImportInput struct {
	Layer domain.Layer
	Path  string
}

// ImportLayerWorkflow replaces one layer from a layer file, then announces
// the update. A failed announcement does not fail the workflow; the layer is
// already written and the next import announces again.
func ImportLayerWorkflow(ctx workflow.Context, input ImportInput) (*domain.DatasetUpdated, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting layer import", "layer", input.Layer, "path", input.Path)

	if _, ok := domain.ParseLayer(string(input.Layer)); !ok {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("unknown layer %q", input.Layer), "UnknownLayer", nil)
	}

	importCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var a *ImportActivities
	var ev *domain.DatasetUpdated
	if err := workflow.ExecuteActivity(importCtx, a.ImportFile, input.Layer, input.Path).Get(ctx, &ev); err != nil {
		return nil, err
	}

	announceCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 5,
		},
	})
	if err := workflow.ExecuteActivity(announceCtx, a.Announce, ev).Get(ctx, nil); err != nil {
		logger.Warn("announce failed", "layer", input.Layer, "error", err)
	}

	logger.Info("Layer import finished", "layer", input.Layer, "records", ev.Records)
	return ev, nil
}

// ImportDatasetInput is the input for ImportDatasetWorkflow.
type ImportDatasetInput struct {
	Files []ImportInput
}

// ImportDatasetWorkflow imports several layers, one child workflow each,
// in the order given. It stops at the first failed layer.
func ImportDatasetWorkflow(ctx workflow.Context, input ImportDatasetInput) ([]*domain.DatasetUpdated, error) {
	events := make([]*domain.DatasetUpdated, 0, len(input.Files))
	for _, f := range input.Files {
		cctx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID: workflow.GetInfo(ctx).WorkflowExecution.ID + "/" + string(f.Layer),
		})
		var ev *domain.DatasetUpdated
		if err := workflow.ExecuteChildWorkflow(cctx, ImportLayerWorkflow, f).Get(ctx, &ev); err != nil {
			return events, fmt.Errorf("layer %s: %w", f.Layer, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
