package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/jimiolaniyan/jwtauth/logging"
)

const (
	maxBodyBytes      = 1 << 20
	tokenValidMessage = "token is valid"
)

type errorResponse struct {
	Error *APIError `json:"error"`
}

// NewRouter wires the signup, login and auth-check endpoints.
func NewRouter(svc Service, logger logging.Logger) http.Handler {
	router := httprouter.New()
	router.Handler(http.MethodPost, "/signup/", RegisterAccountHandler(svc, logger))
	router.Handler(http.MethodPost, "/login/", LoginHandler(svc, logger))
	router.Handler(http.MethodGet, "/auth/", AuthCheckHandler(svc, logger))
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		logger.Error(r.Context(), "panic serving request", "panic", v, "path", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}

	return RequestLogger(router, logger)
}

func RegisterAccountHandler(svc Service, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := registerAccountRequest{}
		if err := decodeRequest(w, r, &req); err != nil {
			encodeError(r.Context(), err, w, logger)
			return
		}

		p, err := svc.RegisterAccount(r.Context(), req)
		if err != nil {
			encodeError(r.Context(), err, w, logger)
			return
		}

		encodeResponse(w, http.StatusCreated, p)
	})
}

func LoginHandler(svc Service, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := loginRequest{}
		if err := decodeRequest(w, r, &req); err != nil {
			encodeError(r.Context(), err, w, logger)
			return
		}

		token, err := svc.Login(r.Context(), req)
		if err != nil {
			encodeError(r.Context(), err, w, logger)
			return
		}

		encodeResponse(w, http.StatusOK, loginResponse{Token: token})
	})
}

func AuthCheckHandler(svc Service, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			encodeError(r.Context(), err, w, logger)
			return
		}

		p, err := svc.WhoAmI(r.Context(), token)
		if err != nil {
			encodeError(r.Context(), err, w, logger)
			return
		}

		encodeResponse(w, http.StatusOK, authCheckResponse{Message: tokenValidMessage, User: p})
	})
}

// bearerToken extracts the token from an Authorization header. A missing
// header or another scheme means no token was supplied.
func bearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrTokenMissing
	}
	if len(parts) != 2 {
		return "", ErrTokenInvalid
	}
	return parts[1], nil
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter, logger logging.Logger) {
	status, body, ok := Normalize(err)
	if !ok {
		logger.Error(ctx, "unhandled error", "err", err.Error(), "request_id", RequestIDFromContext(ctx))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	encodeResponse(w, status, errorResponse{Error: body})
}

func encodeResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeBody(body, v); err != nil {
		return &ValidationError{Message: "malformed request body"}
	}
	return nil
}

func decodeBody(body io.ReadCloser, v interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}
