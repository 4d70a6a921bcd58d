package api

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dynamic-nft/internal/address"
	"dynamic-nft/internal/domain"
	"dynamic-nft/internal/ledger"
	"dynamic-nft/internal/oracle"
	"dynamic-nft/internal/oracle/stub"
	"dynamic-nft/internal/scheduler"
	"dynamic-nft/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	oracle *stub.Oracle
	ledger *ledger.Ledger
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	o := stub.NewOracle("47523")
	l := ledger.New(
		ledger.Config{Name: "Dynamic BTC", Symbol: "DBTC", ImageBase: "https://img.example.com/gen"},
		ledger.Stores{
			Tokens:  memory.NewTokenStore(),
			State:   memory.NewLedgerStateStore(),
			History: memory.NewPriceUpdateStore(),
		},
		oracle.NewAdapter(o, oracle.DefaultConfig(), zap.NewNop()),
		zap.NewNop(),
	)
	return &testEnv{
		router: New(l, opts, zap.NewNop()).Router(),
		oracle: o,
		ledger: l,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type writeBody[T any] struct {
	Result  T      `json:"result"`
	Summary string `json:"summary"`
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.do(t, http.MethodGet, "/health", nil)

	w := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "api_requests_total")
}

func TestMintAndUpdate(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "alice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	minted := decode[writeBody[ledger.MintResult]](t, w)
	assert.Equal(t, "NFT-0001", minted.Result.TokenID)
	assert.Equal(t, int64(47523), minted.Result.Price)
	assert.Contains(t, minted.Summary, "NFT-0001")

	env.oracle.Enqueue(stub.Response{Reply: "52891"})
	w = env.do(t, http.MethodPost, "/v1/tokens/NFT-0001/update", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[writeBody[ledger.UpdateResult]](t, w)
	assert.Equal(t, int64(52891), updated.Result.NewPrice)
	assert.Equal(t, 1, updated.Result.UpdateCount)
	assert.Len(t, updated.Result.Diff, 2)
	assert.Contains(t, updated.Summary, "+11.30%")
}

func TestMint_MissingAddress(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodPost, "/v1/tokens", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMint_StrictAddress(t *testing.T) {
	env := newTestEnv(t, Options{StrictOwnerAddress: true})

	w := env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	w = env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: address.Encode(pub)})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestUnknownToken(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/tokens/NFT-9999/update"},
		{http.MethodGet, "/v1/tokens/NFT-9999"},
		{http.MethodGet, "/v1/tokens/NFT-9999/owner"},
		{http.MethodGet, "/v1/tokens/NFT-9999/preview"},
		{http.MethodGet, "/v1/tokens/NFT-9999/preview?price=60000"},
		{http.MethodGet, "/v1/tokens/NFT-9999/history"},
	} {
		w := env.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
	}
	assert.Empty(t, env.oracle.Prompts(), "unknown token must not reach the oracle")
}

func TestMetadataAndOwner(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "bob"})

	w := env.do(t, http.MethodGet, "/v1/tokens/NFT-0001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	md := decode[map[string]any](t, w)
	assert.Equal(t, "Dynamic BTC #NFT-0001", md["name"])
	assert.Contains(t, md["image"], "color=Yellow")
	assert.Len(t, md["attributes"], 6)

	w = env.do(t, http.MethodGet, "/v1/tokens/NFT-0001/owner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	owner := decode[OwnerResponse](t, w)
	assert.Equal(t, "bob", owner.Owner)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "alice"})
	calls := len(env.oracle.Prompts())

	w := env.do(t, http.MethodGet, "/v1/tokens/NFT-0001/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cached := decode[writeBody[ledger.PreviewResult]](t, w)
	assert.False(t, cached.Result.WouldChange)

	w = env.do(t, http.MethodGet, "/v1/tokens/NFT-0001/preview?price=80000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	explicit := decode[writeBody[ledger.PreviewResult]](t, w)
	assert.True(t, explicit.Result.WouldChange)
	assert.Equal(t, int64(80000), explicit.Result.Price)

	assert.Len(t, env.oracle.Prompts(), calls, "preview must not call the oracle")

	for _, bad := range []string{"abc", "-5", "0"} {
		w = env.do(t, http.MethodGet, "/v1/tokens/NFT-0001/preview?price="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestBatchUpdateAndStats(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, http.MethodPost, "/v1/tokens/batch-update", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[writeBody[ledger.BatchResult]](t, w)
	assert.Zero(t, empty.Result.Updated)
	assert.Equal(t, "No NFTs to update", empty.Summary)

	env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "alice"})
	env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "bob"})

	env.oracle.Enqueue(stub.Response{Reply: "80000"})
	w = env.do(t, http.MethodPost, "/v1/tokens/batch-update", nil)
	require.Equal(t, http.StatusOK, w.Code)
	batch := decode[writeBody[ledger.BatchResult]](t, w)
	assert.Equal(t, 2, batch.Result.Updated)
	assert.True(t, strings.HasPrefix(batch.Summary, "Updated 2 NFTs"))

	w = env.do(t, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.EqualValues(t, 2, stats["total_supply"])
	assert.EqualValues(t, 80000, stats["last_btc_price"])
	counts := stats["rarity_counts"].(map[string]any)
	assert.Len(t, counts, 5)
	assert.EqualValues(t, 2, counts["Legendary"])
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "alice"})
	env.do(t, http.MethodPost, "/v1/tokens/NFT-0001/update", nil)

	w := env.do(t, http.MethodGet, "/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 2, body["count"])

	w = env.do(t, http.MethodGet, "/v1/history?start=0&end=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[map[string]any](t, w)
	assert.EqualValues(t, 0, body["count"])

	w = env.do(t, http.MethodGet, "/v1/history?start=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/history?start=10&end=5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/history?start=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/history?end=-5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenHistory(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "alice"})
	env.do(t, http.MethodPost, "/v1/tokens", MintRequest{ToAddress: "bob"})
	env.oracle.Enqueue(stub.Response{Reply: "61000"})
	env.do(t, http.MethodPost, "/v1/tokens/NFT-0001/update", nil)

	w := env.do(t, http.MethodGet, "/v1/tokens/NFT-0001/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		TokenID string `json:"token_id"`
		Count   int    `json:"count"`
		Updates []struct {
			TokenID  string `json:"token_id"`
			NewPrice int64  `json:"new_price"`
		} `json:"updates"`
	}](t, w)
	assert.Equal(t, "NFT-0001", body.TokenID)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, int64(61000), body.Updates[1].NewPrice)
	for _, u := range body.Updates {
		assert.Equal(t, "NFT-0001", u.TokenID)
	}
}

// brokenLedger fails every stats call with a storage error.
type brokenLedger struct {
	Ledger
}

func (brokenLedger) Stats(context.Context) (*domain.CollectionStats, error) {
	return nil, errors.New("connection reset")
}

func TestNilLogger(t *testing.T) {
	router := New(brokenLedger{}, Options{}, nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { router.ServeHTTP(rec, req) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, Options{})
	w := env.do(t, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	sched := scheduler.New(env.ledger, time.Hour, zap.NewNop())
	_, err := sched.RunOnce(context.Background())
	require.NoError(t, err)

	router := New(env.ledger, Options{Status: sched}, zap.NewNop()).Router()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	st := decode[scheduler.Status](t, rec)
	assert.Equal(t, 1, st.BatchRuns)
	assert.Equal(t, "empty", st.LastBatchStatus)
}
