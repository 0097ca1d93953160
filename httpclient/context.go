package httpclient

import "context"

type ctxKey string

const ctxKeyNoAuthRetry ctxKey = "no_auth_retry"

// WithoutAuthRetry marks a context so that requests made with it skip the
// handleAuthFailureAndRetry stage. The refresh call itself runs under this
// flag, so a failing refresh can never trigger another refresh.
func WithoutAuthRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyNoAuthRetry, true)
}

func authRetryDisabled(ctx context.Context) bool {
	disabled, _ := ctx.Value(ctxKeyNoAuthRetry).(bool)
	return disabled
}
