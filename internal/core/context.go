package core

import "context"

type contextKey string

const ctxKeyOrigin contextKey = "audit_origin"

// Origin says where a session operation came from. Audit records carry
// every non-empty field.
type Origin struct {
	Station  string // receiving station, e.g. "dock-1"
	Operator string // operator badge or name, when known
	Client   string // "console" or the browser user agent
	Address  string // client IP for HTTP requests
}

// WithOrigin attaches o to ctx.
func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, ctxKeyOrigin, o)
}

// OriginFromContext returns the Origin attached to ctx, or the zero Origin.
func OriginFromContext(ctx context.Context) Origin {
	o, _ := ctx.Value(ctxKeyOrigin).(Origin)
	return o
}

func (o Origin) logAttrs() []any {
	var attrs []any
	for _, kv := range [...]struct{ k, v string }{
		{"station", o.Station},
		{"operator", o.Operator},
		{"client", o.Client},
		{"ip", o.Address},
	} {
		if kv.v != "" {
			attrs = append(attrs, kv.k, kv.v)
		}
	}
	return attrs
}
