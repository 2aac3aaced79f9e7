package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/famfund/pkg/api"
	"github.com/mmynk/famfund/pkg/api/apiconnect"
)

// ErrNotAuthenticated is returned by calls that need a session when there is none.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session holds the login state of one user against one server.
// It is safe for concurrent use.
type Session struct {
	httpClient connect.HTTPClient
	baseURL    string
	now        func() time.Time

	auth apiconnect.AuthServiceClient

	mu    sync.RWMutex
	state State
}

// NewSession creates an unauthenticated session. A nil httpClient means
// http.DefaultClient.
func NewSession(httpClient connect.HTTPClient, baseURL string) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	s := &Session{
		httpClient: httpClient,
		baseURL:    baseURL,
		now:        time.Now,
	}
	s.auth = apiconnect.NewAuthServiceClient(httpClient, baseURL, connect.WithInterceptors(s.Interceptor()))
	return s
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the session token, or "" when not authenticated or expired.
func (s *Session) Token() string {
	st := s.State()
	if st.Status != Authenticated || (!st.ExpiresAt.IsZero() && !s.now().Before(st.ExpiresAt)) {
		return ""
	}
	return st.Token
}

func (s *Session) apply(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Transition(s.state, e)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Login authenticates with email and password.
func (s *Session) Login(ctx context.Context, email, password string) (*api.User, error) {
	return s.authenticate(func() (*connect.Response[api.AuthResponse], error) {
		return s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: email, Password: password}))
	})
}

// Register creates an account and signs in as it.
func (s *Session) Register(ctx context.Context, email, displayName, password string) (*api.User, error) {
	return s.authenticate(func() (*connect.Response[api.AuthResponse], error) {
		return s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       email,
			DisplayName: displayName,
			Password:    password,
		}))
	})
}

func (s *Session) authenticate(call func() (*connect.Response[api.AuthResponse], error)) (*api.User, error) {
	if err := s.apply(LoginStarted{}); err != nil {
		return nil, err
	}
	resp, err := call()
	if err != nil {
		_ = s.apply(LoginFailed{Err: err})
		return nil, err
	}
	ok := LoginSucceeded{User: resp.Msg.User, Token: resp.Msg.Token, ExpiresAt: time.Unix(resp.Msg.ExpiresAt, 0)}
	if err := s.apply(ok); err != nil {
		_ = s.apply(LoginFailed{Err: err})
		return nil, err
	}
	return resp.Msg.User, nil
}

// Resume restores a session from a token saved earlier, checking it with the
// server.
func (s *Session) Resume(ctx context.Context, token string, expiresAt time.Time) (*api.User, error) {
	if err := s.apply(LoginStarted{}); err != nil {
		return nil, err
	}
	req := connect.NewRequest(&emptypb.Empty{})
	req.Header().Set("Authorization", "Bearer "+token)
	resp, err := s.auth.GetCurrentUser(ctx, req)
	if err != nil {
		_ = s.apply(LoginFailed{Err: err})
		return nil, err
	}
	if err := s.apply(LoginSucceeded{User: resp.Msg.User, Token: token, ExpiresAt: expiresAt}); err != nil {
		_ = s.apply(LoginFailed{Err: err})
		return nil, err
	}
	return resp.Msg.User, nil
}

// Logout tells the server and drops the local session. The local state is
// cleared even when the call fails.
func (s *Session) Logout(ctx context.Context) error {
	var err error
	if s.Token() != "" {
		_, err = s.auth.Logout(ctx, connect.NewRequest(&emptypb.Empty{}))
	}
	if tErr := s.apply(LoggedOut{}); tErr != nil {
		return tErr
	}
	return err
}

// CurrentUser asks the server who the session belongs to.
func (s *Session) CurrentUser(ctx context.Context) (*api.User, error) {
	if s.Token() == "" {
		return nil, ErrNotAuthenticated
	}
	resp, err := s.auth.GetCurrentUser(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		if connect.CodeOf(err) == connect.CodeUnauthenticated {
			_ = s.apply(LoggedOut{})
		}
		return nil, err
	}
	return resp.Msg.User, nil
}

// Interceptor adds the session token to outgoing requests that do not carry
// an Authorization header already.
func (s *Session) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && req.Header().Get("Authorization") == "" {
				if token := s.Token(); token != "" {
					req.Header().Set("Authorization", "Bearer "+token)
				}
			}
			return next(ctx, req)
		}
	}
}

// Contribute returns a ContributeService client authenticated by this session.
func (s *Session) Contribute(opts ...connect.ClientOption) apiconnect.ContributeServiceClient {
	return apiconnect.NewContributeServiceClient(s.httpClient, s.baseURL, append(opts, connect.WithInterceptors(s.Interceptor()))...)
}

// Finance returns a FinanceService client authenticated by this session.
func (s *Session) Finance(opts ...connect.ClientOption) apiconnect.FinanceServiceClient {
	return apiconnect.NewFinanceServiceClient(s.httpClient, s.baseURL, append(opts, connect.WithInterceptors(s.Interceptor()))...)
}
