package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"anniversary-api/internal/domain"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// JWTService emite y valida tokens de identidad.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid    = errors.New("jwt invalid")
	ErrJWTExpired    = fmt.Errorf("%w: expired", ErrJWTInvalid)
	ErrMissingAuth   = errors.New("authorization header missing")
	ErrMalformedAuth = errors.New("authorization header malformed")
)

func NewJWTService(secret string, ttl time.Duration, issuer string) *JWTService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "anniversary-api"
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj; pensado para tests de expiracion.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Issue firma un token para el usuario y devuelve su expiracion.
func (s *JWTService) Issue(user domain.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrJWTInvalid
	}
	if user.ID <= 0 {
		return "", time.Time{}, ErrJWTInvalid
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify valida firma y expiracion en un solo paso y devuelve el id del usuario.
func (s *JWTService) Verify(tokenString string) (int64, error) {
	if len(s.secret) == 0 {
		return 0, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return 0, ErrJWTInvalid
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrJWTExpired
		}
		return 0, ErrJWTInvalid
	}

	// uid debe ser numerico y coincidir con sub; un payload manipulado no se coerciona.
	if claims.UserID <= 0 {
		return 0, ErrJWTInvalid
	}
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return 0, ErrJWTInvalid
	}
	return claims.UserID, nil
}

// VerifyHeader valida un header "Bearer <token>" completo.
func (s *JWTService) VerifyHeader(header string) (int64, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, ErrMissingAuth
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return 0, ErrMalformedAuth
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrMalformedAuth
	}
	return s.Verify(token)
}
