package core

import "context"

type clientKey struct{}

// Client identifies the caller behind an update batch.
type Client struct {
	IP        string
	UserAgent string
}

// WithClient attaches c to ctx for update logging.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFromContext returns the Client stored by WithClient, or the zero value.
func ClientFromContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}
