package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
)

// WorkflowRef names a Cloud Workflows workflow.
type WorkflowRef struct {
	ProjectID string
	Location  string
	ID        string
}

func (w WorkflowRef) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s/workflows/%s", w.ProjectID, w.Location, w.ID)
}

// TriggerWorkflow starts an execution with payload as its JSON argument and returns
// the execution name.
func TriggerWorkflow(ctx context.Context, client *executions.Client, wf WorkflowRef, payload any) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: wf.parent(),
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	exec, err := client.CreateExecution(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create workflow execution: %w", err)
	}
	return exec.GetName(), nil
}
