package ports

import "context"

// WorkflowOrchestrator starts order workflows, durably or inline.
type WorkflowOrchestrator interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderRecord, error)
}
