package auth

import "context"

type Service interface {
	RegisterAccount(ctx context.Context, r registerAccountRequest) (Profile, error)
	Login(ctx context.Context, r loginRequest) (string, error)
	WhoAmI(ctx context.Context, token string) (Profile, error)
}

type Events interface {
	AccountCreated(ctx context.Context, id string, username string, nickname string)
}

// Repository is the credential store. Store must reject a username or
// nickname that is already taken with ErrDuplicate, atomically with the write.
type Repository interface {
	FindByID(ctx context.Context, id ID) (*Account, error)
	FindByName(ctx context.Context, username string) (*Account, error)
	FindByNickname(ctx context.Context, nickname string) (*Account, error)
	Store(ctx context.Context, acc *Account) error
}

type registerAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type authCheckResponse struct {
	Message string  `json:"message"`
	User    Profile `json:"user"`
}
