package authflow

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenServiceImpl implements the TokenIssuer interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	clock      Clock
}

// NewTokenService creates a new TokenIssuer instance
func NewTokenService(signingKey []byte, accessTTL, refreshTTL time.Duration, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
		clock:      time.Now,
	}
}

// NewTokenServiceFromConfig builds a TokenIssuer from a Config object.
func NewTokenServiceFromConfig(cfg Config, logger Logger) *TokenServiceImpl {
	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetAccessTokenTTL(),
		cfg.GetRefreshTokenTTL(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		logger,
	)
}

// WithClock overrides the time source, used in tests to freeze expiries.
func (ts *TokenServiceImpl) WithClock(clock Clock) *TokenServiceImpl {
	if clock != nil {
		ts.clock = clock
	}
	return ts
}

// Issue mints the access/refresh pair for a principal. Both tokens carry the
// principal id and type; the refresh token additionally carries the refresh
// token-use marker so it cannot be replayed as an access credential.
func (ts *TokenServiceImpl) Issue(principalID string, principalType PrincipalType) (*TokenBundle, error) {
	now := ts.clock()
	accessExpiry := now.Add(ts.accessTTL)
	refreshExpiry := now.Add(ts.refreshTTL)

	access, err := ts.SignClaims(ts.newClaims(principalID, principalType, TokenUseAccess, now, accessExpiry))
	if err != nil {
		return nil, err
	}

	refresh, err := ts.SignClaims(ts.newClaims(principalID, principalType, TokenUseRefresh, now, refreshExpiry))
	if err != nil {
		return nil, err
	}

	return &TokenBundle{
		Access:           access,
		Refresh:          refresh,
		ExpiredAt:        accessExpiry,
		RefreshableUntil: refreshExpiry,
	}, nil
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies an access token, returning structured claims.
// Refresh tokens are rejected here so they cannot serve as access
// credentials.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	claims, err := ts.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenUse() != TokenUseAccess {
		ts.logger.Warn("TokenService validate rejected non-access token", "use", claims.TokenUse())
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// ValidateRefresh parses and verifies a refresh token.
func (ts *TokenServiceImpl) ValidateRefresh(tokenString string) (AuthClaims, error) {
	claims, err := ts.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenUse() != TokenUseRefresh {
		ts.logger.Warn("TokenService validate rejected non-refresh token", "use", claims.TokenUse())
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

func (ts *TokenServiceImpl) parse(tokenString string) (*JWTClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithTimeFunc(func() time.Time { return ts.clock() }))
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService parse encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService parse could not decode or validate claims")
	return nil, ErrTokenMalformed
}

func (ts *TokenServiceImpl) newClaims(principalID string, principalType PrincipalType, use string, issuedAt, expiresAt time.Time) *JWTClaims {
	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   principalID,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		PID:   principalID,
		PType: principalType,
		Use:   use,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return claims
}
