// Package service exposes the authenticator as a Connect RPC service.
//
// Messages are plain Go structs carried by a JSON codec, so the service can
// be called with the Connect protocol from any HTTP client:
//
//	curl -H 'Content-Type: application/json' \
//	     -d '{"email":"a@x.com","password":"secret123"}' \
//	     http://localhost:8000/auth.v1.AuthService/Login
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/authd/internal/auth"
	"github.com/mmynk/authd/internal/metrics"
	"github.com/mmynk/authd/internal/models"
)

const (
	// AuthServiceName is the fully-qualified name of the service.
	AuthServiceName = "auth.v1.AuthService"

	RegisterProcedure    = "/auth.v1.AuthService/Register"
	LoginProcedure       = "/auth.v1.AuthService/Login"
	GoogleLoginProcedure = "/auth.v1.AuthService/GoogleLogin"
)

// Authenticator is the subset of auth.Authenticator the service calls.
type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Result, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error)
	GoogleLogin(ctx context.Context, assertion string) (*auth.Result, error)
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	GoogleID string `json:"googleId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	GoogleID string `json:"googleId"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// AuthResponse is returned by every procedure.
type AuthResponse struct {
	AccessToken string                `json:"accessToken"`
	User        *models.PublicProfile `json:"user,omitempty"`
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator Authenticator
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service. m may be nil.
func NewAuthService(authenticator Authenticator, m *metrics.Metrics, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		metrics:       m,
		logger:        logger,
	}
}

// NewAuthServiceHandler builds an HTTP handler serving all procedures and
// returns the path prefix to mount it on.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(RegisterProcedure, connect.NewUnaryHandler(RegisterProcedure, svc.Register, opts...))
	mux.Handle(LoginProcedure, connect.NewUnaryHandler(LoginProcedure, svc.Login, opts...))
	mux.Handle(GoogleLoginProcedure, connect.NewUnaryHandler(GoogleLoginProcedure, svc.GoogleLogin, opts...))
	return "/" + AuthServiceName + "/", mux
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	s.logger.Debug("Register request", "email", req.Msg.Email)

	res, err := s.authenticator.Register(ctx, auth.RegisterInput{
		FullName:    req.Msg.FullName,
		Email:       req.Msg.Email,
		Password:    req.Msg.Password,
		FederatedID: req.Msg.GoogleID,
	})
	s.observe("register", err)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&AuthResponse{
		AccessToken: res.Token,
		User:        &res.Profile,
	}), nil
}

// Login authenticates a user with email+password or a registered Google ID.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	s.logger.Debug("Login request", "email", req.Msg.Email)

	loginReq, err := auth.ParseLoginRequest(req.Msg.Email, req.Msg.Password, req.Msg.GoogleID)
	if err == nil {
		var res *auth.Result
		res, err = s.authenticator.Login(ctx, loginReq)
		if err == nil {
			s.observe("login", nil)
			return connect.NewResponse(&AuthResponse{
				AccessToken: res.Token,
				User:        &res.Profile,
			}), nil
		}
	}

	s.observe("login", err)
	return nil, toConnectError(err)
}

// GoogleLogin exchanges a Google ID token for an access token.
func (s *AuthService) GoogleLogin(ctx context.Context, req *connect.Request[GoogleLoginRequest]) (*connect.Response[AuthResponse], error) {
	res, err := s.authenticator.GoogleLogin(ctx, req.Msg.Token)
	s.observe("google_login", err)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&AuthResponse{AccessToken: res.Token}), nil
}

func (s *AuthService) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = auth.KindOf(err).String()
	}
	s.metrics.ObserveAuth(operation, outcome)
}

func toConnectError(err error) *connect.Error {
	switch auth.KindOf(err) {
	case auth.KindValidation:
		return connect.NewError(connect.CodeInvalidArgument, errors.New(auth.MessageOf(err)))
	case auth.KindConflict:
		return connect.NewError(connect.CodeAlreadyExists, errors.New(auth.MessageOf(err)))
	case auth.KindAuth:
		return connect.NewError(connect.CodeUnauthenticated, errors.New(auth.MessageOf(err)))
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
