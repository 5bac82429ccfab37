package stub

import (
	"context"

	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
)

// Placeholder credentials. This is an equality check for the demo login
// screen, not an authentication mechanism.
const (
	DemoUsername = "admin"
	DemoPassword = "admin"
)

// Auth accepts only the demo credentials.
type Auth struct{}

func (Auth) Login(ctx context.Context, username, password string) (model.Principal, error) {
	if username != DemoUsername || password != DemoPassword {
		return model.Principal{}, &provider.Error{Message: i18n.MsgInvalidCredentials}
	}
	return model.Principal{
		ID:       "1",
		Username: DemoUsername,
		Email:    "admin@example.com",
		Role:     model.RoleAdmin,
	}, nil
}

func (Auth) Logout(ctx context.Context) error {
	return nil
}
