package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/observability"
	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	bearerPrefix = "Bearer "
)

type principalContextKey struct{}

// Principal represents the authenticated caller of a single request.
type Principal struct {
	Subject int64
	Email   string
}

// TokenVerifier is the part of TokenManager the gate depends on.
type TokenVerifier interface {
	Verify(token string, now time.Time) (Claims, error)
}

// GateConfig configures the request gate.
type GateConfig struct {
	PublicRoutes []string
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Now          func() time.Time
}

// Gate decides per request whether a bearer token is required and, if so,
// whether the presented one is valid.
type Gate struct {
	tokens  TokenVerifier
	public  []string
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewGate constructs the gate middleware.
func NewGate(tokens TokenVerifier, cfg GateConfig) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	public := make([]string, 0, len(cfg.PublicRoutes))
	for _, route := range cfg.PublicRoutes {
		if route = strings.TrimSuffix(strings.TrimSpace(route), "/"); route != "" {
			public = append(public, route)
		}
	}
	return &Gate{tokens: tokens, public: public, logger: logger, metrics: cfg.Metrics, now: now}
}

// Handle enforces authentication for every route that is not public.
func (g *Gate) Handle(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions {
		return c.Next()
	}
	if g.IsPublic(c.Path()) {
		return c.Next()
	}

	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		g.reject(c, ErrMissingCredential)
		return apperrors.NewUnauthorized(apperrors.CodeMissingToken, ErrMissingCredential)
	}

	claims, err := g.tokens.Verify(token, g.now())
	if err != nil {
		g.reject(c, err)
		return apperrors.NewUnauthorized(apperrors.CodeInvalidToken, err)
	}

	principal := &Principal{Subject: claims.Subject, Email: claims.Email}
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
	return c.Next()
}

// IsPublic reports whether path is reachable without a token. A route
// pattern matches itself and anything below it, segment-wise.
func (g *Gate) IsPublic(path string) bool {
	for _, route := range g.public {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

func (g *Gate) reject(c *fiber.Ctx, err error) {
	kind := FailureKind(err)
	g.metrics.RecordAuthRejection(kind)
	g.logger.Info("request rejected",
		zap.String("reason", kind),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
}

func bearerToken(value string) (string, bool) {
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", false
	}
	token := value[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFrom extracts the principal attached by the gate.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok && p != nil
}

// PrincipalFromContext retrieves the authenticated caller of a fiber request.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return PrincipalFrom(c.UserContext())
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
