package auth

import (
	"fmt"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer           = "wearxture"
	CustomerAudience = "wearxture-customer"
	AdminAudience    = "wearxture-admin"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signe et valide les jetons d'une audience donnée.
type TokenIssuer struct {
	secret      []byte
	audience    string
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewTokenIssuer(secret, audience string, ttl, rememberTTL time.Duration) *TokenIssuer {
	if rememberTTL < ttl {
		rememberTTL = ttl
	}
	return &TokenIssuer{
		secret:      []byte(secret),
		audience:    audience,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

func (t *TokenIssuer) Audience() string {
	return t.audience
}

// Issue retourne le jeton signé et sa date d'expiration.
func (t *TokenIssuer) Issue(u models.User, remember bool) (string, time.Time, error) {
	now := t.now()
	ttl := t.ttl
	if remember {
		ttl = t.rememberTTL
	}
	expires := now.Add(ttl)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse valide la signature, l'audience et l'expiration.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(t.audience),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: jeton invalide: %v", errs.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sujet manquant", errs.ErrUnauthorized)
	}
	return claims, nil
}
