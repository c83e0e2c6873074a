package backend

import (
	"context"
	"errors"
	"net/http"
)

// User is the signed-in backend user
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// DisplayName prefers the full name
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// LoginResult is the backend's answer to a successful login
type LoginResult struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// BearerToken returns whichever token field the backend populated
func (r LoginResult) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ErrNoToken is returned when the backend accepts a login but sends no token
var ErrNoToken = errors.New("backend login returned no token")

// Login exchanges credentials for a backend bearer token
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.Login(), loginRequest{Username: username, Password: password}, &res); err != nil {
		return nil, err
	}
	if res.BearerToken() == "" {
		return nil, ErrNoToken
	}
	if res.User.Username == "" {
		res.User.Username = username
	}
	return &res, nil
}
