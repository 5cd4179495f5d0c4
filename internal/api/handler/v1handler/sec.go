package v1handler

import (
	"context"
	"errors"
	"net/http"
	"radiomirchi/internal/config"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/serrors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CtxKey is a string-based type used for storing values in request contexts.
type CtxKey string

// UserIDKey is the context key of the authenticated domain.UserID.
const UserIDKey CtxKey = "UserID"

type SecHandlerOptions struct {
	// Secret is the HS256 key tokens are signed with. Empty disables tokens.
	Secret string
	// Required rejects requests that carry no valid token.
	Required bool
}

// NewSecHandlerOptions constructs SecHandlerOptions from the provided application config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{
		Secret:   cfg.Auth.Secret,
		Required: cfg.Auth.Required,
	}
}

type SecHandler struct {
	key      []byte
	required bool
	parser   *jwt.Parser
}

func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	if opts.Required && opts.Secret == "" {
		return nil, errors.New("a secret is required when authentication is required")
	}

	return &SecHandler{
		key:      []byte(opts.Secret),
		required: opts.Required,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}, nil
}

// HandleBearerAuth validates token and stores its subject as the user id.
func (s SecHandler) HandleBearerAuth(ctx context.Context, token string) (context.Context, error) {
	if len(s.key) == 0 {
		return ctx, serrors.With(serrors.ErrUnauthorized, "bearer tokens are not accepted")
	}

	var claims jwt.RegisteredClaims
	if _, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}); err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return ctx, serrors.With(serrors.ErrUnauthorized, "token has no subject")
	}

	return context.WithValue(ctx, UserIDKey, domain.UserID(subject)), nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}

		return ""
	}

	// browsers cannot set headers on WebSocket handshakes
	return r.URL.Query().Get("access_token")
}

// Authenticate resolves the caller from the bearer token. Requests without a
// token pass through unless authentication is required.
func (s SecHandler) Authenticate(h *Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			switch {
			case token != "":
				ctx, err := s.HandleBearerAuth(r.Context(), token)
				if err != nil {
					h.writeError(w, r, err)

					return
				}
				r = r.WithContext(ctx)
			case s.required && r.URL.Path != "/" && r.URL.Path != "/healthz":
				h.writeError(w, r, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext returns the authenticated user, if any.
func GetUserIDFromContext(ctx context.Context) (domain.UserID, bool) {
	id, ok := ctx.Value(UserIDKey).(domain.UserID)

	return id, ok && id != ""
}

// resolveUser returns the authenticated user, then the id the client
// supplied, then the anonymous user.
func resolveUser(ctx context.Context, supplied string) domain.UserID {
	if id, ok := GetUserIDFromContext(ctx); ok {
		return id
	}
	if supplied = strings.TrimSpace(supplied); supplied != "" {
		return domain.UserID(supplied)
	}

	return domain.AnonymousUser
}
