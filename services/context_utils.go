package services

import "context"

// persistentContext keeps ctx's values but not its cancellation, for writes
// that must finish after the request is gone.
func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
