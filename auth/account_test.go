package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAccount(t *testing.T) {
	u := &Account{Credentials: Credentials{Username: "user", Nickname: "Tester"}}
	longName := strings.Repeat("u", maxUsernameLen+1)
	longNick := strings.Repeat("n", maxNicknameLen+1)

	tests := []struct {
		username, nickname string
		wantField          string
		wantAcc            *Account
	}{
		{wantField: "username"},
		{username: longName, nickname: "n", wantField: "username"},
		{username: "user name with space", nickname: "n", wantField: "username"},
		{username: "user#name", nickname: "n", wantField: "username"},
		{username: "username", wantField: "nickname"},
		{username: "username", nickname: longNick, wantField: "nickname"},
		{username: "user", nickname: "Tester", wantAcc: u},
		{username: "a.b@c+d-e_f", nickname: "nick name", wantAcc: &Account{Credentials: Credentials{Username: "a.b@c+d-e_f", Nickname: "nick name"}}},
	}

	for _, tt := range tests {
		acc, err := NewAccount(tt.username, tt.nickname)
		if tt.wantField != "" {
			var vErr *ValidationError
			if assert.ErrorAs(t, err, &vErr) {
				assert.Equal(t, tt.wantField, vErr.Field)
			}
		} else {
			assert.NoError(t, err)
		}
		assert.Equal(t, tt.wantAcc, acc)
	}
}

func TestAccount_ProfileHidesPassword(t *testing.T) {
	acc := &Account{Credentials: Credentials{Username: "user", Nickname: "Tester", Password: "hash"}}

	assert.Equal(t, Profile{Username: "user", Nickname: "Tester"}, acc.Profile())
}

func TestHashPassword(t *testing.T) {
	hash, err := hashPassword("StrongPassword123", 4)

	assert.NoError(t, err)
	assert.NotEqual(t, "StrongPassword123", hash)
	assert.True(t, hashMatchesPassword(hash, "StrongPassword123"))
	assert.False(t, hashMatchesPassword(hash, "WrongPassword"))
}

func TestNewID(t *testing.T) {
	assert.True(t, isValidID(string(NewID())))
	assert.False(t, isValidID("not-an-id"))
}
