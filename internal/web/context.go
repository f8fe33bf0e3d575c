package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/inbound/internal/core"
)

// OperatorHeader optionally names the operator behind a browser request.
const OperatorHeader = "X-Operator-ID"

// WithRequestMetadata records where the request came from for audit
// logging. RemoteAddr is already resolved by TrustedRealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request, station string) context.Context {
	return core.WithOrigin(ctx, core.Origin{
		Station:  station,
		Operator: r.Header.Get(OperatorHeader),
		Client:   r.UserAgent(),
		Address:  r.RemoteAddr,
	})
}
