package screen

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/journal"
	"github.com/powervision/estoque/internal/nav"
	"github.com/powervision/estoque/internal/session"
)

// Login is the controller of the login screen.
type Login struct {
	d Deps
}

func NewLogin(d Deps) *Login {
	return &Login{d: d.withDefaults()}
}

// Focus implements nav.Screen. The login screen has nothing to load.
func (l *Login) Focus(context.Context, nav.Params) error { return nil }

// Submit authenticates and, on success, stores the token and user id in
// the session and moves to the product list. Every failure is alerted and
// leaves the screen as it was.
func (l *Login) Submit(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		l.d.Alert.Alert(TitleError, MsgFillCredentials)
		return domain.NewValidationError("credentials", "username and password are required")
	}

	tok, err := l.d.Auth.Login(ctx, username, password)
	if err != nil {
		l.d.Log.Info("login_failed", zap.Error(err))
		l.d.record(ctx, journal.ActionLogin, "", err, "")
		l.d.Alert.Alert(TitleError, loginMessage(err))
		return err
	}

	userID := session.UserIDFromToken(tok.AccessToken)
	l.d.Session.SetToken(tok.AccessToken)
	l.d.Session.SetUserID(userID)
	l.d.Log.Info("login_succeeded", zap.Bool("user_id_known", userID != ""))
	l.d.record(ctx, journal.ActionLogin, "", nil, "")

	return l.d.Nav.Navigate(ctx, nav.Products, nil)
}

func loginMessage(err error) string {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
		return MsgAuthFailed
	}
	if domain.IsValidation(err) {
		return MsgFillCredentials
	}
	return MsgLoginError
}
