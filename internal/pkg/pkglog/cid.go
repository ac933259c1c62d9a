package pkglog

import "context"

type chainIDContextKey struct{}

const invalidChainID = "[invalid_chain_id]"

// GetCorrelationID returns the correlation ID stored in the context.
func GetCorrelationID(ctx context.Context) string {
	clm, ok := ctx.Value(chainIDContextKey{}).(string)
	if !ok {
		return invalidChainID
	}
	return clm
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, chainIDContextKey{}, cid)
}

// CarryCorrelationID copies the correlation ID of src, if any, onto dst.
// Background work started by a request keeps the request's ID in its logs
// while living on dst's lifetime.
func CarryCorrelationID(dst, src context.Context) context.Context {
	cid, ok := src.Value(chainIDContextKey{}).(string)
	if !ok {
		return dst
	}
	return SetCorrelationID(dst, cid)
}
