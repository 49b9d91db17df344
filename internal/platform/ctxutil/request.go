package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is the identity attached by the auth middleware.
type RequestData struct {
	UserID     string
	AuthScheme string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
