// Package requestcontext carries request-scoped metadata through context.Context.
package requestcontext

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	clientIPKey
	userAgentKey
	deviceKey
	clientKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID or an empty string.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey, ua)
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey).(string)
	return v
}

// WithDevice stores the human-readable device description ("Chrome on Linux").
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey, device)
}

func Device(ctx context.Context) string {
	v, _ := ctx.Value(deviceKey).(string)
	return v
}

// WithClient stores the username of the client authenticated by bearer token.
func WithClient(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, clientKey, username)
}

func Client(ctx context.Context) string {
	v, _ := ctx.Value(clientKey).(string)
	return v
}
