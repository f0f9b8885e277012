package server

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/Rehan-Abrar/Cine-Note/internal/auth"
)

// AuthMiddleware attaches the session user to the request context.
// Requests without a token pass through anonymously; the synchronizers
// decide whether an operation needs a user. A token that is present but
// does not verify is rejected.
func AuthMiddleware(v *auth.Verifier) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			// Get transport info
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return handler(ctx, req)
			}

			tok := bearer(tr.RequestHeader().Get("Authorization"))
			if tok == "" {
				// cookie fallback for browser requests
				if r, ok := khttp.RequestFromServerContext(ctx); ok {
					if c, err := r.Cookie("access_token"); err == nil {
						tok = c.Value
					}
				}
			}
			if tok == "" {
				return handler(ctx, req)
			}

			u, err := v.Verify(tok)
			if err != nil {
				return nil, errors.Unauthorized("UNAUTHORIZED", "invalid session token")
			}
			return handler(auth.NewContext(ctx, u), req)
		}
	}
}

// bearer extracts the token from an Authorization header value.
func bearer(authz string) string {
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
