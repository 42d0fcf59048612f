package util

import (
	"context"
)

type key string

const (
	clientIPKey  = key("x-forwarded-for")
	ownerKey     = key("owner")
	requestIDKey = key("x-request-id")
)

// Fields returns the request-scoped values set into ctx by this package,
// keyed by their log field names. Unset values are omitted.
func Fields(ctx context.Context) map[string]string {
	fields := make(map[string]string, 3)
	for name, value := range map[string]string{
		"request_id": GetRequestID(ctx),
		"client_ip":  GetClientIP(ctx),
		"owner":      GetOwner(ctx),
	} {
		if value != "" {
			fields[name] = value
		}
	}
	return fields
}

// WithClientIP returns a context with a client ip
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// WithOwner returns a context carrying the identity that submits orders.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// GetClientIP returns client ip from context
// will return empty string if not present
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// GetOwner returns the submitting identity, or "".
func GetOwner(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

// GetRequestID returns request id from context
// will return empty string if not present
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
