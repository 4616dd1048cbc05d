package careauth

import "context"

type contextKey uint8

const (
	deviceTokenKey contextKey = iota
	userAgentKey
)

// WithDeviceToken overrides the device identifier sent on a sign-in request
// made with the returned context.
func WithDeviceToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, deviceTokenKey, token)
}

// DeviceTokenFromContext returns the device token override, if one is set.
func DeviceTokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(deviceTokenKey).(string)
	return tok, ok && tok != ""
}

// WithUserAgent overrides the User-Agent header for requests made with the
// returned context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey, ua)
}

// UserAgentFromContext returns the User-Agent override, if one is set.
func UserAgentFromContext(ctx context.Context) (string, bool) {
	ua, ok := ctx.Value(userAgentKey).(string)
	return ua, ok && ua != ""
}
