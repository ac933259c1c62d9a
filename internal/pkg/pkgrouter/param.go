package pkgrouter

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

// GetParam reads a path parameter stored by httprouter. Values are already
// percent-decoded, so an encoded "%2F" arrives as "/".
func GetParam(ctx context.Context, key string) string {
	return httprouter.ParamsFromContext(ctx).ByName(key)
}
