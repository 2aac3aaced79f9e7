package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/famfund/internal/metrics"
	"github.com/mmynk/famfund/internal/middleware"
	"github.com/mmynk/famfund/internal/models"
	"github.com/mmynk/famfund/internal/storage/sqlite"
	"github.com/mmynk/famfund/pkg/api/apiconnect"
)

// testUserHeader selects the caller in tests; it defaults to the first test user.
const testUserHeader = "X-Test-User"

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor(defaultUser string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			userID := req.Header().Get(testUserHeader)
			if userID == "" {
				userID = defaultUser
			}
			if userID != "anonymous" {
				ctx = middleware.WithUser(ctx, userID, userID+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	contribute apiconnect.ContributeServiceClient
	finance    apiconnect.FinanceServiceClient
	store      *sqlite.SQLiteStore
	metrics    *metrics.Metrics
	// alice and bob are stored users; alice is the default caller.
	alice, bob *models.User
}

// setupTestServer creates a test server with a temp-dir SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:   store,
		metrics: metrics.New(),
		alice:   createUser(t, store, "alice"),
		bob:     createUser(t, store, "bob"),
	}

	interceptors := connect.WithInterceptors(testAuthInterceptor(env.alice.ID))
	contributePath, contributeHandler := apiconnect.NewContributeServiceHandler(NewContributeService(store, env.metrics), interceptors)
	financePath, financeHandler := apiconnect.NewFinanceServiceHandler(NewFinanceService(store), interceptors)

	mux := http.NewServeMux()
	mux.Handle(contributePath, contributeHandler)
	mux.Handle(financePath, financeHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	env.contribute = apiconnect.NewContributeServiceClient(http.DefaultClient, server.URL)
	env.finance = apiconnect.NewFinanceServiceClient(http.DefaultClient, server.URL)
	return env
}

func createUser(t *testing.T, store *sqlite.SQLiteStore, name string) *models.User {
	t.Helper()
	user := models.NewUser(name+"@example.com", name, "unused-hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// as builds a request sent on behalf of the given user ID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, userID)
	return req
}

// metricValue sums every sample of a counter family.
func metricValue(t *testing.T, env *testEnv, name string) float64 {
	t.Helper()
	families, err := env.metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
