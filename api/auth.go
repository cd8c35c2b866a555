package api

import (
	"context"
	"fmt"

	"github.com/ant-lat/code-review-sub000/menu"
	"github.com/ant-lat/code-review-sub000/session"
)

const (
	pathLogin       = "/api/v1/auth/login"
	pathLogout      = "/api/v1/auth/logout"
	pathRefresh     = "/api/v1/auth/refresh"
	pathCurrentUser = "/api/v1/auth/me"
	pathUserMenus   = "/api/v1/auth/menus"
)

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the data payload of a successful login envelope.
type LoginResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int64        `json:"expires_in,omitempty"`
	User         session.User `json:"user"`
	Permissions  []string     `json:"permissions,omitempty"`
}

// RefreshResult is the data payload of a token refresh.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// CurrentUserResult is the data payload of the current-user endpoint.
type CurrentUserResult struct {
	User        session.User `json:"user"`
	Permissions []string     `json:"permissions,omitempty"`
}

// AuthService covers the authentication endpoints: login, logout, token
// refresh, current user, and the permission-filtered menu tree.
type AuthService struct {
	client *Client
}

// NewAuthService creates an [AuthService] over client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges credentials for tokens and the current user.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	if err := s.client.Post(ctx, pathLogin, creds, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("api: login envelope carried no access token")
	}
	return &result, nil
}

// Logout invalidates the server-side session. Callers typically run it in
// silent mode: local teardown happens regardless of the outcome.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Post(ctx, pathLogout, nil, nil)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var result RefreshResult
	if err := s.client.Post(ctx, pathRefresh, body, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("api: refresh envelope carried no access token")
	}
	return &result, nil
}

// CurrentUser fetches the authenticated user and their permission codes.
func (s *AuthService) CurrentUser(ctx context.Context) (*CurrentUserResult, error) {
	var result CurrentUserResult
	if err := s.client.Get(ctx, pathCurrentUser, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Menu fetches the permission-filtered menu tree for the authenticated user.
func (s *AuthService) Menu(ctx context.Context) (menu.Tree, error) {
	var raw []menu.Node
	if err := s.client.Get(ctx, pathUserMenus, nil, &raw); err != nil {
		return nil, err
	}
	tree := menu.Tree(raw)
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}
