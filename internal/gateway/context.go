package gateway

import "context"

type operationKey struct{}

// WithOperationID tags ctx so that requests sent with it carry id as their
// X-Request-ID. Stores use it to correlate log lines with API calls.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationKey{}, id)
}

// OperationID returns the id attached by WithOperationID.
func OperationID(ctx context.Context) string {
	id, _ := ctx.Value(operationKey{}).(string)
	return id
}
