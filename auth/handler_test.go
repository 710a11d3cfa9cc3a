package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jimiolaniyan/jwtauth/logging"
)

const signupReq = `{"username": "testuser", "password": "StrongPassword123", "nickname": "Tester"}`

type apiErrorBody struct {
	Error APIError `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, Repository) {
	t.Helper()
	accounts := NewAccountRepository()
	svc := NewService(accounts, NewTokenService(testSigningKey, 5*time.Minute, "auth"), nil, WithHashCost(bcrypt.MinCost))
	return NewRouter(svc, logging.Discard()), accounts
}

func doRequest(h http.Handler, method, path, body, authorization string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body apiErrorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	w := doRequest(h, http.MethodPost, "/login/", `{"username": "testuser", "password": "StrongPassword123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var res loginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res.Token
}

func TestSignupHandler(t *testing.T) {
	h, accounts := newTestRouter(t)

	w := doRequest(h, http.MethodPost, "/signup/", signupReq, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, map[string]interface{}{"username": "testuser", "nickname": "Tester"}, res)

	_, err := accounts.FindByName(context.Background(), "testuser")
	assert.NoError(t, err)
}

func TestSignupHandler_Errors(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(h, http.MethodPost, "/signup/", signupReq, "").Code)

	tests := []struct {
		name, req string
		want      APIError
	}{
		{"same data", signupReq, APIError{CodeUserAlreadyExists, "user already exists"}},
		{"same data again", signupReq, APIError{CodeUserAlreadyExists, "user already exists"}},
		{"same username", `{"username": "testuser", "password": "StrongPassword123", "nickname": "Other"}`, APIError{CodeUserAlreadyExists, "user already exists"}},
		{"same nickname", `{"username": "other", "password": "StrongPassword123", "nickname": "Tester"}`, APIError{CodeUserAlreadyExists, "user already exists"}},
		{"missing password and nickname", `{"username": "newuser"}`, APIError{CodeValidation, "password: this field is required."}},
		{"missing nickname", `{"username": "newuser", "password": "StrongPassword123"}`, APIError{CodeValidation, "nickname: this field is required."}},
		{"empty body", `{}`, APIError{CodeValidation, "username: this field is required."}},
		{"numeric password", `{"username": "newuser", "password": "93817264530", "nickname": "n"}`, APIError{CodeValidation, "password: this password is entirely numeric."}},
		{"malformed", `invalid request`, APIError{CodeValidation, "malformed request body"}},
		{"wrong type", `{"username": 1}`, APIError{CodeValidation, "malformed request body"}},
	}

	for _, tt := range tests {
		w := doRequest(h, http.MethodPost, "/signup/", tt.req, "")

		assert.Equal(t, http.StatusBadRequest, w.Code, tt.name)
		assert.Equal(t, tt.want, decodeAPIError(t, w), tt.name)
	}
}

func TestLoginHandler(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(h, http.MethodPost, "/signup/", signupReq, "").Code)

	token := login(t, h)

	assert.Greater(t, len(token), 20)
	assert.NotContains(t, token, "StrongPassword123")
}

func TestLoginHandler_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(h, http.MethodPost, "/signup/", signupReq, "").Code)

	wrongPassword := doRequest(h, http.MethodPost, "/login/", `{"username": "testuser", "password": "WrongPassword"}`, "")
	unknownUser := doRequest(h, http.MethodPost, "/login/", `{"username": "nonexistentuser", "password": "StrongPassword123"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.Equal(t, APIError{CodeInvalidCredentials, "invalid username or password"}, decodeAPIError(t, wrongPassword))
}

func TestLoginHandler_MissingFields(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doRequest(h, http.MethodPost, "/login/", `{"password": "StrongPassword123"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, APIError{CodeValidation, "username: this field is required."}, decodeAPIError(t, w))
}

func TestAuthCheckHandler(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(h, http.MethodPost, "/signup/", signupReq, "").Code)
	token := login(t, h)

	w := doRequest(h, http.MethodGet, "/auth/", "", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	var res authCheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, authCheckResponse{Message: "token is valid", User: Profile{"testuser", "Tester"}}, res)
}

func TestAuthCheckHandler_Errors(t *testing.T) {
	h, accounts := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(h, http.MethodPost, "/signup/", signupReq, "").Code)

	acc, err := accounts.FindByName(context.Background(), "testuser")
	require.NoError(t, err)
	expired, err := newTestTokenService(time.Now().Add(-time.Hour)).Issue(acc.ID)
	require.NoError(t, err)

	tests := []struct {
		name, authorization string
		want                APIError
	}{
		{"no header", "", APIError{CodeTokenNotFound, "token not found"}},
		{"other scheme", "Basic dXNlcjpwYXNz", APIError{CodeTokenNotFound, "token not found"}},
		{"bearer without token", "Bearer", APIError{CodeInvalidToken, "token is invalid"}},
		{"bearer with spaces", "Bearer a b", APIError{CodeInvalidToken, "token is invalid"}},
		{"invalid token", "Bearer this.is.not.a.valid.token", APIError{CodeInvalidToken, "token is invalid"}},
		{"expired token", "Bearer " + expired, APIError{CodeTokenExpired, "token has expired"}},
	}

	for _, tt := range tests {
		w := doRequest(h, http.MethodGet, "/auth/", "", tt.authorization)

		assert.Equal(t, http.StatusUnauthorized, w.Code, tt.name)
		assert.Equal(t, tt.want, decodeAPIError(t, w), tt.name)
	}
}

func TestUnhandledErrorHasNoBody(t *testing.T) {
	svc := NewService(failingRepository{}, NewTokenService(testSigningKey, time.Minute, "auth"), nil, WithHashCost(bcrypt.MinCost))
	h := NewRouter(svc, logging.Discard())

	w := doRequest(h, http.MethodPost, "/signup/", signupReq, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRequestLogger_RequestID(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doRequest(h, http.MethodGet, "/auth/", "", "")
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	r := httptest.NewRequest(http.MethodGet, "/auth/", nil)
	r.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header, want string
		wantErr      error
	}{
		{"", "", ErrTokenMissing},
		{"Token abc", "", ErrTokenMissing},
		{"Bearer", "", ErrTokenInvalid},
		{"Bearer a b", "", ErrTokenInvalid},
		{"Bearer abc", "abc", nil},
		{"bearer  abc ", "abc", nil},
	}

	for _, tt := range tests {
		got, err := bearerToken(tt.header)
		assert.Equal(t, tt.wantErr, err, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
