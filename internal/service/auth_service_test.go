package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/authd/internal/auth"
	"github.com/mmynk/authd/internal/metrics"
	"github.com/mmynk/authd/internal/middleware"
	"github.com/mmynk/authd/internal/storage/memory"
)

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, assertion string) (*auth.FederatedIdentity, error) {
	if assertion != "good-token" {
		return nil, errors.New("bad signature")
	}
	return &auth.FederatedIdentity{Subject: "sub-1", Email: "g@x.com", Name: "Grace"}, nil
}

func newTestService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	authenticator := auth.NewAuthenticator(store, auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewJWTManager("secret", auth.TokenDuration), stubVerifier{}, logger)
	return NewAuthService(authenticator, metrics.New(), logger), store
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, connect.NewRequest(&RegisterRequest{
		FullName: "Ann",
		Email:    "a@x.com",
		Password: "secret123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.AccessToken == "" || resp.Msg.User == nil || resp.Msg.User.Email != "a@x.com" {
		t.Fatalf("unexpected response: %+v", resp.Msg)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 user, got %d", store.Len())
	}

	_, err = svc.Register(ctx, connect.NewRequest(&RegisterRequest{FullName: "Ann", Email: "a@x.com", Password: "x"}))
	if connect.CodeOf(err) != connect.CodeAlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}

	login, err := svc.Login(ctx, connect.NewRequest(&LoginRequest{Email: "a@x.com", Password: "secret123"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.FullName != "Ann" {
		t.Errorf("unexpected user: %+v", login.Msg.User)
	}

	_, err = svc.Login(ctx, connect.NewRequest(&LoginRequest{Email: "a@x.com", Password: "wrong"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	_, err = svc.Login(ctx, connect.NewRequest(&LoginRequest{Email: "a@x.com"}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestAuthServiceGoogleLogin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	resp, err := svc.GoogleLogin(ctx, connect.NewRequest(&GoogleLoginRequest{Token: "good-token"}))
	if err != nil {
		t.Fatalf("GoogleLogin failed: %v", err)
	}
	if resp.Msg.AccessToken == "" || resp.Msg.User != nil {
		t.Fatalf("unexpected response: %+v", resp.Msg)
	}
	if store.Len() != 1 {
		t.Fatalf("expected provisioned user, got %d", store.Len())
	}

	_, err = svc.GoogleLogin(ctx, connect.NewRequest(&GoogleLoginRequest{Token: "forged"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) && connectErr.Message() != auth.MsgInvalidGoogleToken {
		t.Errorf("unexpected message %q", connectErr.Message())
	}
}

func TestAuthServiceOverHTTP(t *testing.T) {
	svc, _ := newTestService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path, handler := NewAuthServiceHandler(svc, connect.WithInterceptors(middleware.LoggingInterceptor(logger)))
	if path != "/auth.v1.AuthService/" {
		t.Fatalf("unexpected mount path %q", path)
	}
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	register := connect.NewClient[RegisterRequest, AuthResponse](
		http.DefaultClient, server.URL+RegisterProcedure, connect.WithCodec(jsonCodec{}),
	)
	resp, err := register.CallUnary(context.Background(), connect.NewRequest(&RegisterRequest{
		FullName: "Ann",
		Email:    "a@x.com",
		Password: "secret123",
	}))
	if err != nil {
		t.Fatalf("Register over HTTP failed: %v", err)
	}
	if resp.Msg.User == nil || resp.Msg.User.FullName != "Ann" {
		t.Fatalf("unexpected response: %+v", resp.Msg)
	}

	login := connect.NewClient[LoginRequest, AuthResponse](
		http.DefaultClient, server.URL+LoginProcedure, connect.WithCodec(jsonCodec{}),
	)
	_, err = login.CallUnary(context.Background(), connect.NewRequest(&LoginRequest{Email: "a@x.com", Password: "nope"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}
