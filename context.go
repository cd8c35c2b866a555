package codereview

import (
	"context"

	"github.com/ant-lat/code-review-sub000/api"
)

// WithSilent marks ctx so requests it carries opt out of global error
// notifications. Failures still propagate to the caller.
func WithSilent(ctx context.Context) context.Context {
	return api.WithSilent(ctx)
}

// WithRequestID attaches a caller-chosen request id to ctx, overriding the
// generated one on outgoing requests.
func WithRequestID(ctx context.Context, id string) context.Context {
	return api.WithRequestID(ctx, id)
}
