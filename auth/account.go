package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/rs/xid"
)

type Account struct {
	ID          ID
	Credentials Credentials
	CreatedAt   time.Time
}

type ID string

//Credentials holds the account's sensitive information
type Credentials struct {
	Username,
	Nickname,
	Password string
}

// Profile is the public view of an account.
type Profile struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

const (
	maxUsernameLen = 150
	maxNicknameLen = 100
)

var usernameRegexp = regexp.MustCompile(`^[\w.@+-]+$`)

//NewAccount validates username and nickname and returns a new Account if
// arguments are valid
func NewAccount(username string, nickname string) (*Account, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}

	c := Credentials{Username: username, Nickname: nickname}
	return &Account{Credentials: c}, nil
}

func (a *Account) Profile() Profile {
	return Profile{Username: a.Credentials.Username, Nickname: a.Credentials.Nickname}
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return fieldError("username", errFieldRequired)
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return fieldError("username", "ensure this field has no more than 150 characters.")
	case !usernameRegexp.MatchString(username):
		return fieldError("username", "enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}

func validateNickname(nickname string) error {
	switch {
	case nickname == "":
		return fieldError("nickname", errFieldRequired)
	case utf8.RuneCountInString(nickname) > maxNicknameLen:
		return fieldError("nickname", "ensure this field has no more than 100 characters.")
	}
	return nil
}

func normalizeIdentifier(s string) string {
	return strings.TrimSpace(s)
}

func NewID() ID {
	return ID(xid.New().String())
}

func isValidID(id string) bool {
	if _, err := xid.FromString(id); err != nil {
		return false
	}
	return true
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.New("error hashing password")
	}
	return string(hash), nil
}

func hashMatchesPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
