package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainmagnet/chainmagnet/internal/app"
	"github.com/chainmagnet/chainmagnet/internal/config"
	"github.com/chainmagnet/chainmagnet/internal/discovery"
	"github.com/chainmagnet/chainmagnet/internal/signals"
	"github.com/chainmagnet/chainmagnet/internal/votes"
)

type fixedSources struct{}

func (fixedSources) Flows(ctx context.Context, tokenID string) (*signals.Bridge, error) {
	return &signals.Bridge{Volume7d: 1_750_000}, nil
}

func (fixedSources) Search(ctx context.Context, symbol string) (*signals.Search, error) {
	return &signals.Search{DexVolume24h: 500_000}, nil
}

func (fixedSources) ListedIndex(ctx context.Context) ([]string, error) {
	return []string{"Alpha (Wormhole)"}, nil
}

func (fixedSources) Community(ctx context.Context, tokenID string) (*signals.Social, error) {
	return &signals.Social{Followers: 250_000}, nil
}

func (fixedSources) ChainHealth(ctx context.Context, tokenID string) (*signals.ChainHealth, error) {
	return &signals.ChainHealth{MarketCap: 2.5e9}, nil
}

func (fixedSources) Markets(ctx context.Context, page, perPage int) ([]discovery.RankedAsset, error) {
	if page > 1 {
		return nil, nil
	}
	return []discovery.RankedAsset{
		{ID: "alpha", Symbol: "alp", Name: "Alpha", MarketCap: 9e9},
	}, nil
}

func (fixedSources) PresenceRegistry(ctx context.Context) (discovery.Registry, error) {
	return discovery.Registry{"alpha": {"ethereum": "0x1"}}, nil
}

func (fixedSources) Overlap(ctx context.Context, tokenID string) (*signals.WalletOverlap, error) {
	return &signals.WalletOverlap{OverlapPct: 20}, nil
}

func newTestServer(t *testing.T, voteStore *votes.Store) *Server {
	t.Helper()
	src := fixedSources{}
	svc := app.New(app.Options{
		Sources: app.Sources{Bridge: src, Search: src, Social: src, Market: src, Overlap: src},
		Votes:   voteStore,
	})
	return NewServer(svc, config.Default().Server)
}

func TestHandleScore(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/score/chainlink", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var score struct {
		TokenID    string  `json:"token_id"`
		TotalScore float64 `json:"total_score"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, "chainlink", score.TokenID)
	assert.Equal(t, 1.0, score.Confidence)
}

func TestHandleDiscovery(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/discovery", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		TargetChain string            `json:"target_chain"`
		Count       int               `json:"count"`
		Tokens      []discovery.Token `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "base", payload.TargetChain)
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "alpha", payload.Tokens[0].ID)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Providers []struct {
			Provider string `json:"provider"`
			Status   string `json:"status"`
		} `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Providers, 5)
}

func TestHandleVotes_Disabled(t *testing.T) {
	srv := newTestServer(t, votes.NewStore(nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/votes/chainlink", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleVotes_CastAndCount(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectIncr("chainmagnet:votes:chainlink").SetVal(1)
	mock.ExpectGet("chainmagnet:votes:chainlink").SetVal("1")
	srv := newTestServer(t, votes.NewStore(client))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/votes/chainlink", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"votes":1`))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/votes/chainlink", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	// Generate some metric traffic first.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/score/chainlink", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chainmagnet_scores_computed_total")
}

func TestHealthStream_PushesSnapshot(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/health"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame struct {
		Providers []json.RawMessage `json:"providers"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Len(t, frame.Providers, 5, "first snapshot arrives immediately")
}

func TestPing(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
