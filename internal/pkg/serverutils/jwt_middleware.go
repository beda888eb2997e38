package serverutils

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalsUserID        = "user_id"
	UnauthorizedMessage = "Request Unauthorized"
)

var (
	ErrMissingToken    = errors.New("missing bearer token")
	ErrNoVerifierKey   = errors.New("no token verification key configured")
	ErrMissingSubject  = errors.New("token has no subject")
	ErrUnauthorizedAzp = errors.New("token issued for an unauthorized party")

	// ErrRequestUnauthorized renders the same 401 body as the auth gate.
	ErrRequestUnauthorized = errors.New("request unauthorized")
)

type JwtConfig struct {
	// Secret verifies HS256 tokens.
	Secret string
	// PublicKeyPEM verifies RS256 session tokens from the identity provider. Takes precedence over Secret.
	PublicKeyPEM      string
	AuthorizedParties []string
}

type JwtVerifier struct {
	hmacSecret []byte
	rsaKey     any
	method     string
	parties    []string
}

func NewJwtVerifier(cfg JwtConfig) (*JwtVerifier, error) {
	v := &JwtVerifier{parties: cfg.AuthorizedParties}
	switch {
	case cfg.PublicKeyPEM != "":
		// env files usually carry the PEM on one line with literal \n
		pem := strings.ReplaceAll(cfg.PublicKeyPEM, `\n`, "\n")
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		v.rsaKey = key
		v.method = jwt.SigningMethodRS256.Alg()
	case cfg.Secret != "":
		v.hmacSecret = []byte(cfg.Secret)
		v.method = jwt.SigningMethodHS256.Alg()
	}
	return v, nil
}

// Verify returns the token subject ("sub", falling back to "user_id").
func (v *JwtVerifier) Verify(tokenStr string) (string, error) {
	if v.method == "" {
		return "", ErrNoVerifierKey
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if v.rsaKey != nil {
			return v.rsaKey, nil
		}
		return v.hmacSecret, nil
	}, jwt.WithValidMethods([]string{v.method}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}

	if azp, ok := claims["azp"].(string); ok && azp != "" && len(v.parties) > 0 {
		if !slices.Contains(v.parties, azp) {
			return "", ErrUnauthorizedAzp
		}
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		sub, _ = claims["user_id"].(string)
	}
	if sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

func bearerToken(header string) (string, error) {
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(header[7:])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func unauthorizedResponse() Response[any] {
	return Response[any]{
		Success: false,
		Message: UnauthorizedMessage,
	}
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(unauthorizedResponse())
}

// JwtMiddleware rejects the request before any handler runs unless it carries a
// valid bearer token. The subject is stored under LocalsUserID.
func JwtMiddleware(verifier *JwtVerifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr, err := bearerToken(ctx.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(ctx)
		}

		sub, err := verifier.Verify(tokenStr)
		if err != nil {
			return unauthorized(ctx)
		}

		ctx.Locals(LocalsUserID, sub)
		return ctx.Next()
	}
}

// UserIDFromCtx returns the authenticated subject, if any.
func UserIDFromCtx(ctx *fiber.Ctx) (string, bool) {
	id, ok := ctx.Locals(LocalsUserID).(string)
	return id, ok && id != ""
}
