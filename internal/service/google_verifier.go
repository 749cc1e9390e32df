package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// GoogleIDTokenVerifier validates Google ID tokens against the configured
// OAuth client ID and extracts the profile claims.
type GoogleIDTokenVerifier struct {
	ClientID string
}

func (v GoogleIDTokenVerifier) Verify(ctx context.Context, tokenString string) (*GoogleProfile, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errors.New("missing id token")
	}
	if strings.TrimSpace(v.ClientID) == "" {
		return nil, errors.New("missing google client id")
	}

	payload, err := idtoken.Validate(ctx, tokenString, v.ClientID)
	if err != nil {
		return nil, err
	}
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return nil, fmt.Errorf("unexpected issuer: %s", payload.Issuer)
	}

	return &GoogleProfile{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	if raw, ok := claims[key]; ok {
		if v, ok := raw.(string); ok {
			return v
		}
	}
	return ""
}
