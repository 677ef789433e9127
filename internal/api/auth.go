package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/powervision/estoque/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token. Empty credentials are
// rejected without contacting the server.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Token, error) {
	if username == "" || password == "" {
		return domain.Token{}, domain.NewValidationError("credentials", "username and password are required")
	}

	const op = "login"
	status, body, err := c.do(ctx, op, http.MethodPost, c.serverURL.JoinPath("auth", "login"),
		loginRequest{Username: username, Password: password}, false)
	if err != nil {
		return domain.Token{}, err
	}
	if !isOK(status) {
		return domain.Token{}, &domain.AuthError{Status: status, Message: serverMessage(body)}
	}

	var tok domain.Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return domain.Token{}, &domain.TransportError{Op: op, Err: err}
	}
	// No server text here, so the screen falls back to its own message.
	if tok.AccessToken == "" {
		return domain.Token{}, &domain.AuthError{Status: status}
	}
	return tok, nil
}
