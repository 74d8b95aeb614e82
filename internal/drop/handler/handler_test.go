package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curio/internal/auth"
	"curio/internal/drop/models"
	"curio/internal/drop/service"
	"curio/internal/drop/store/ledger"
	"curio/internal/drop/store/state"
	"curio/internal/drop/store/whitelist"
	"curio/internal/platform/middleware"
	"curio/internal/treasury"
	"curio/pkg/testutil"
)

// The handler tests run the full chain: router, auth middleware, service,
// in-memory stores. Requests authenticate with real signed tokens.
type fixture struct {
	router   http.Handler
	handler  *Handler
	jwt      *auth.JWTService
	treasury *treasury.InMemory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	funds := treasury.NewInMemory()
	svc := service.New(state.NewInMemory(), ledger.NewInMemory(), whitelist.NewInMemory(), funds,
		service.WithLogger(logger))

	initial, err := models.NewCollection("admin", 100, 10, 1, "ipfs://placeholder")
	require.NoError(t, err)
	require.NoError(t, svc.Bootstrap(context.Background(), initial))
	funds.Credit(context.Background(), "alice", 1000)
	funds.Credit(context.Background(), "bob", 1000)

	jwtSvc := auth.NewJWTService("test-signing-key", "curio")
	h := New(svc, logger, jwtSvc)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	h.Register(r)

	return &fixture{router: r, handler: h, jwt: jwtSvc, treasury: funds}
}

func (f *fixture) request(t *testing.T, method, path, account string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if account != "" {
		token, err := f.jwt.GenerateToken(account, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) openMint(t *testing.T) {
	t.Helper()
	w := f.request(t, http.MethodPut, "/admin/mint-open", "admin", map[string]bool{"open": true})
	require.Equal(t, http.StatusNoContent, w.Code)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestMintEndpoint(t *testing.T) {
	f := newFixture(t)
	f.openMint(t)

	t.Run("requires authentication", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/mint", "", map[string]uint64{"payment": 1})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("successful mint returns the token", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/mint", "alice", map[string]uint64{"payment": 1})
		require.Equal(t, http.StatusCreated, w.Code)

		var token models.Token
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
		assert.Equal(t, uint64(1), token.ID)
		assert.Equal(t, models.Account("alice"), token.Owner)
		assert.Equal(t, "ipfs://placeholder", token.URI)
	})

	t.Run("wrong payment maps to 402", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/mint", "alice", map[string]uint64{"payment": 3})
		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		assert.Equal(t, "wrong_payment", errorCode(t, w))
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		token, err := f.jwt.GenerateToken("alice", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/mint", bytes.NewReader([]byte("{")))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMintClosedAndPausedStatuses(t *testing.T) {
	f := newFixture(t)

	w := f.request(t, http.MethodPost, "/mint", "alice", map[string]uint64{"payment": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "minting_closed", errorCode(t, w))

	f.openMint(t)
	w = f.request(t, http.MethodPost, "/admin/pause", "admin", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.request(t, http.MethodPost, "/mint", "alice", map[string]uint64{"payment": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "paused", errorCode(t, w))
}

func TestTokenEndpoints(t *testing.T) {
	f := newFixture(t)
	f.openMint(t)

	w := f.request(t, http.MethodPost, "/mint", "alice", map[string]uint64{"payment": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("read is public", func(t *testing.T) {
		w := f.request(t, http.MethodGet, "/tokens/1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var token models.Token
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
		assert.Equal(t, models.Account("alice"), token.Owner)
	})

	t.Run("unknown token maps to 404", func(t *testing.T) {
		w := f.request(t, http.MethodGet, "/tokens/99", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric token id maps to 400", func(t *testing.T) {
		w := f.request(t, http.MethodGet, "/tokens/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("transfer moves ownership", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/tokens/1/transfer", "alice", map[string]string{"to": "bob"})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.request(t, http.MethodGet, "/tokens/1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var token models.Token
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
		assert.Equal(t, models.Account("bob"), token.Owner)
	})

	t.Run("transfer by non-owner maps to 403", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/tokens/1/transfer", "alice", map[string]string{"to": "charlie"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "unauthorized", errorCode(t, w))
	})

	t.Run("approve then burn by spender", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/tokens/1/approve", "bob", map[string]string{"spender": "charlie"})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.request(t, http.MethodPost, "/tokens/1/burn", "charlie", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.request(t, http.MethodGet, "/tokens/1", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccountTokenListing(t *testing.T) {
	f := newFixture(t)
	f.openMint(t)

	for i := 0; i < 3; i++ {
		w := f.request(t, http.MethodPost, "/mint", "alice", map[string]uint64{"payment": 1})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := f.request(t, http.MethodGet, "/accounts/alice/tokens", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tokens []models.Token `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tokens, 3)
	for i, token := range resp.Tokens {
		assert.Equal(t, uint64(i+1), token.ID)
	}

	t.Run("empty account returns an empty list", func(t *testing.T) {
		w := f.request(t, http.MethodGet, "/accounts/nobody/tokens", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tokens":[]}`, w.Body.String())
	})
}

func TestCollectionEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.request(t, http.MethodGet, "/collection", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["phase"])
	assert.Equal(t, float64(100), resp["cap"])
	assert.Equal(t, false, resp["mint_open"])
	assert.Equal(t, float64(0), resp["total_supply"])
}

func TestAdminEndpoints(t *testing.T) {
	f := newFixture(t)

	t.Run("non-administrator maps to 403", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/admin/phase", "alice", map[string]uint64{"limit": 50, "price": 2})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "unauthorized", errorCode(t, w))
	})

	t.Run("phase advance beyond cap maps to 422", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/admin/phase", "admin", map[string]uint64{"limit": 101, "price": 2})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "cap_exceeded", errorCode(t, w))
	})

	t.Run("valid phase advance", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/admin/phase", "admin", map[string]uint64{"limit": 50, "price": 2})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.request(t, http.MethodGet, "/collection", "", nil)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(2), resp["phase"])
		assert.Equal(t, float64(50), resp["phase_limit"])
	})

	t.Run("whitelist toggle reports the new value", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/admin/whitelist/toggle", "admin", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"enabled":true}`, w.Body.String())

		w = f.request(t, http.MethodPost, "/admin/whitelist/toggle", "admin", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"enabled":false}`, w.Body.String())
	})

	t.Run("uri batch with mismatched lengths maps to 400", func(t *testing.T) {
		w := f.request(t, http.MethodPut, "/admin/uris", "admin", map[string]any{
			"token_ids": []uint64{1, 2},
			"uris":      []string{"ipfs://only-one"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "length_mismatch", errorCode(t, w))
	})

	t.Run("renounce locks out every admin route", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/admin/renounce", "admin", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = f.request(t, http.MethodPut, "/admin/price", "admin", map[string]uint64{"price": 9})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestWhitelistedMintFlow(t *testing.T) {
	f := newFixture(t)
	f.openMint(t)

	w := f.request(t, http.MethodPost, "/admin/whitelist/toggle", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodPost, "/mint", "bob", map[string]uint64{"payment": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_whitelisted", errorCode(t, w))

	w = f.request(t, http.MethodPut, "/admin/whitelist", "admin", map[string]any{
		"account": "bob", "approved": true,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.request(t, http.MethodPost, "/mint", "bob", map[string]uint64{"payment": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
}

// TestHandleMintDirect drives the mint handler without the middleware chain,
// injecting the authenticated account straight into the context.
func TestHandleMintDirect(t *testing.T) {
	f := newFixture(t)
	f.openMint(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/mint", map[string]uint64{"payment": 1})
	req = testutil.WithAccount(req, "alice")
	rr := testutil.DoRequest(http.HandlerFunc(f.handler.handleMint), req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	token := testutil.UnmarshalResponse[models.Token](t, rr)
	assert.Equal(t, uint64(1), token.ID)
	assert.Equal(t, models.Account("alice"), token.Owner)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/mint", map[string]uint64{"payment": 9})
	req = testutil.WithAccount(req, "alice")
	rr = testutil.DoRequest(http.HandlerFunc(f.handler.handleMint), req)
	testutil.AssertStatusAndError(t, rr, http.StatusPaymentRequired, "wrong_payment")
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic(fmt.Errorf("kaboom"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
