package auth

import (
	"context"

	"github.com/jimiolaniyan/jwtauth/logging"
)

// LogEvents reports account lifecycle events to a logger.
type LogEvents struct {
	Logger logging.Logger
}

func (e LogEvents) AccountCreated(ctx context.Context, id string, username string, nickname string) {
	e.Logger.Info(ctx, "account_created", "id", id, "username", username, "nickname", nickname)
}
