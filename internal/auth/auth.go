package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

// ErrNoKey is returned when no signing secret is configured.
var ErrNoKey = errors.New("no verification key")

type ctxKeyUser struct{}

// Claims is the session token payload issued by the identity provider.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 session tokens and turns them into a biz.User.
type Verifier struct {
	secret   []byte
	audience string
	issuer   string
}

// NewVerifier creates a Verifier from the auth config.
func NewVerifier(c *conf.Auth) *Verifier {
	v := &Verifier{}
	if c != nil {
		v.secret = []byte(c.JWTSecret)
		v.audience = c.Audience
		v.issuer = c.Issuer
	}
	return v
}

// Verify parses tok and returns the identity it carries.
func (v *Verifier) Verify(tok string) (*biz.User, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoKey
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, v.keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid session token: missing subject")
	}
	return &biz.User{ID: claims.Subject, Email: claims.Email}, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected method: %v", token.Header["alg"])
	}
	return v.secret, nil
}

// Sign issues an HS256 token carrying claims.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoKey
	}
	if claims.Audience == nil && v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	if claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// NewContext returns a copy of ctx carrying u.
func NewContext(ctx context.Context, u *biz.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFromContext returns the signed-in user, or nil for an anonymous caller.
func UserFromContext(ctx context.Context) *biz.User {
	if u, ok := ctx.Value(ctxKeyUser{}).(*biz.User); ok {
		return u
	}
	return nil
}
