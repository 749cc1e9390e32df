package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"accounthub/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload both token classes carry.
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the two token classes. Access and refresh
// tokens use distinct secrets, so a token of one class never validates as
// the other.
type TokenManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (m TokenManager) IssueAccessToken(userID, email, role string) (string, error) {
	return m.sign(userID, email, role, m.AccessSecret, m.accessTTL())
}

func (m TokenManager) IssueRefreshToken(userID, email, role string) (string, error) {
	return m.sign(userID, email, role, m.RefreshSecret, m.refreshTTL())
}

func (m TokenManager) IssueTokenPair(userID, email, role string) (TokenPair, error) {
	accessToken, err := m.IssueAccessToken(userID, email, role)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := m.IssueRefreshToken(userID, email, role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (m TokenManager) VerifyAccessToken(tokenString string) (*TokenClaims, error) {
	claims, err := m.parse(tokenString, m.AccessSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperr.New("Access token has expired", http.StatusUnauthorized, apperr.CodeTokenExpired)
		case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperr.New("Invalid access token", http.StatusUnauthorized, apperr.CodeInvalidToken)
		default:
			return nil, apperr.New("Token verification failed", http.StatusUnauthorized, apperr.CodeTokenVerification)
		}
	}
	return claims, nil
}

func (m TokenManager) VerifyRefreshToken(tokenString string) (*TokenClaims, error) {
	claims, err := m.parse(tokenString, m.RefreshSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperr.New("Refresh token has expired. Please login again", http.StatusUnauthorized, apperr.CodeRefreshTokenExpired)
		case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperr.New("Invalid refresh token", http.StatusUnauthorized, apperr.CodeInvalidRefreshToken)
		default:
			return nil, apperr.New("Refresh token verification failed", http.StatusUnauthorized, apperr.CodeTokenVerification)
		}
	}
	return claims, nil
}

func (m TokenManager) sign(userID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m TokenManager) parse(tokenString string, secret []byte) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenMalformed
	}
	return claims, nil
}

func (m TokenManager) accessTTL() time.Duration {
	if m.AccessTTL > 0 {
		return m.AccessTTL
	}
	return 15 * time.Minute
}

func (m TokenManager) refreshTTL() time.Duration {
	if m.RefreshTTL > 0 {
		return m.RefreshTTL
	}
	return 7 * 24 * time.Hour
}

// IsExpiringSoon reports whether claims expire within thresholdMinutes.
func IsExpiringSoon(claims *TokenClaims, thresholdMinutes int) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	threshold := time.Duration(thresholdMinutes) * time.Minute
	return time.Until(claims.ExpiresAt.Time) < threshold
}

// ExtractBearerToken pulls the token out of an Authorization header value,
// returning "" when the Bearer scheme prefix is absent or malformed.
func ExtractBearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ExtractBearerFromRequest reads the Authorization header of r.
func ExtractBearerFromRequest(r *http.Request) string {
	return ExtractBearerToken(r.Header.Get("Authorization"))
}

// TokenExpirationDate decodes the expiry of a token without verifying its
// signature. Returns the zero time when the token cannot be decoded.
func TokenExpirationDate(tokenString string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, &TokenClaims{})
	if err != nil {
		return time.Time{}
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
