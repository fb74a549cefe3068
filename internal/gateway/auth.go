package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"anistream/pkg/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type signInResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         userPayload `json:"user"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userPayload) toModel() models.User {
	role := u.Role
	if role == "" {
		role = "user"
	}
	return models.User{ID: u.ID, Email: u.Email, Role: role}
}

// SignIn performs the password grant against the auth sub-service.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	var out signInResponse
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if resp.StatusCode() == 400 || resp.StatusCode() == 401 {
		return nil, ErrInvalidCredentials
	}
	if resp.IsError() {
		return nil, restError("sign in", resp)
	}

	return &models.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    time.Now().Unix() + out.ExpiresIn,
		User:         out.User.toModel(),
	}, nil
}

// Session asks the gateway who the given access token belongs to. A nil
// user with nil error means the token no longer maps to a session.
func (c *Client) Session(ctx context.Context, accessToken string) (*models.User, error) {
	var out userPayload
	resp, err := c.http.R().SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, restError("fetch session", resp)
	}

	u := out.toModel()
	return &u, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.http.R().SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/auth/v1/logout")
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	// an already-dead session is fine
	if resp.IsError() && resp.StatusCode() != 401 && resp.StatusCode() != 403 {
		return restError("sign out", resp)
	}
	return nil
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserFromToken verifies a gateway access token locally (the gateway signs
// them HS256 with the configured secret) and recovers the user record
// without a network round trip.
func (c *Client) UserFromToken(raw string) (*models.User, error) {
	if len(c.jwtSecret) == 0 {
		return nil, errors.New("gateway jwt secret not configured")
	}

	tok, err := jwt.ParseWithClaims(raw, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := tok.Claims.(*accessClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token claims")
	}

	role := claims.Role
	if role == "" {
		role = "user"
	}
	return &models.User{ID: claims.Subject, Email: claims.Email, Role: role}, nil
}
