// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-lab/internal/api"
	"idea-lab/internal/canvas"
	"idea-lab/internal/common/config"
	"idea-lab/internal/common/database"
	"idea-lab/internal/common/genai"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/funding"
	"idea-lab/internal/ideagen"
	"idea-lab/internal/repository"
	"idea-lab/internal/roadmap"
	"idea-lab/internal/session"
	"idea-lab/internal/storage"
)

// Runs against real PostgreSQL and Redis, with the model replaced by a
// fake gateway. Set E2E_POSTGRES_HOST (and optionally E2E_REDIS_ADDRESS)
// to enable, e.g. against docker compose services on localhost.

const userID = "e2e-user"

var cannedReplies = map[string]string{
	"Suggest 6 small-business ideas": `[
		{"machineName": "Vinyl Cutter", "businessTitle": "Custom Decal Shop", "description": "Decals for cars and laptops",
		 "priceRange": "$200-$400", "sourcePlatform": "Amazon", "potentialRevenue": "$2k/month"},
		{"machineName": "Laser Engraver", "businessTitle": "Personalised Gifts", "description": "Engraved wood and leather",
		 "priceRange": "$300-$800", "sourcePlatform": "Alibaba", "potentialRevenue": "$3k/month"}
	]`,
	"operating blueprint": `{"overview": "A decal studio", "targetMarket": "Car owners",
		"skillRequirements": ["design"], "operationalRequirements": ["workspace"], "revenueStreams": ["custom orders"]}`,
	"Plan the launch": `[
		{"phaseName": "Setup", "duration": "2 weeks", "steps": ["buy cutter", "register business"]},
		{"phaseName": "Launch", "duration": "1 month", "steps": ["open online shop", "first ads"]}
	]`,
	"unit economics": `{"initialInvestment": 1200, "monthlyFixedCosts": 300, "costPerUnit": 2,
		"pricePerUnit": 5, "estimatedMonthlySales": 200, "currency": "USD"}`,
}

func fakeGateway(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		text := ""
		for marker, reply := range cannedReplies {
			if strings.Contains(req.Prompt, marker) {
				text = reply
				break
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
}

type stack struct {
	server *httptest.Server
	pg     *database.PostgresClient
}

func setup(t *testing.T) *stack {
	host := os.Getenv("E2E_POSTGRES_HOST")
	if host == "" {
		t.Skip("E2E_POSTGRES_HOST not set")
	}
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(ctx, config.PostgresConfig{
		Host:           host,
		Port:           5432,
		Database:       envOr("E2E_POSTGRES_DB", "idea_lab"),
		User:           envOr("E2E_POSTGRES_USER", "postgres"),
		Password:       envOr("E2E_POSTGRES_PASSWORD", "postgres"),
		SSLMode:        "disable",
		MaxConnections: 5,
		MaxIdle:        2,
	})
	require.NoError(t, err, "PostgreSQL connection failed")
	t.Cleanup(func() { pg.Close() })
	require.NoError(t, pg.Migrate(ctx))
	_, err = pg.DB.ExecContext(ctx, `DELETE FROM business_ideas WHERE user_id = $1`, userID)
	require.NoError(t, err)

	var store storage.KVStore = storage.NewMemoryStore(time.Hour, 100)
	if addr := os.Getenv("E2E_REDIS_ADDRESS"); addr != "" {
		rdb, err := database.NewRedis(ctx, config.RedisConfig{Address: addr})
		require.NoError(t, err, "Redis connection failed")
		t.Cleanup(func() { rdb.Close() })
		store = storage.NewRedisStore(rdb, time.Hour, fmt.Sprintf("e2e:%d:", time.Now().UnixNano()))
	}

	gw := fakeGateway(t)
	t.Cleanup(gw.Close)
	gen := genai.NewGatewayClient(config.GenAIConfig{BaseURL: gw.URL, Timeout: 5000, MaxRetries: 1})
	ideas := ideagen.NewService(gen, nil, log)
	tracker := roadmap.NewTracker(store, log)

	srv := api.NewServer(api.Deps{
		Ideas:    ideas,
		Store:    repository.NewIdeaRepository(pg.DB),
		Profiles: repository.NewProfileRepository(pg.DB),
		Sessions: session.NewManager(ideas, tracker, log, "en", 10),
		Canvas:   canvas.NewService(ideas, store, log),
		Funding:  funding.NewPlanner(ideas, store, nil, log),
	}, log)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &stack{server: ts, pg: pg}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (s *stack) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.server.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type ideaList struct {
	Ideas []map[string]interface{} `json:"ideas"`
}

func TestEndToEnd_IdeaLifecycle(t *testing.T) {
	s := setup(t)

	var generated ideaList
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/ideas/generate",
		map[string]string{"industry": "printing"}, &generated))
	require.Len(t, generated.Ideas, 2)
	first := generated.Ideas[0]
	id := first["id"].(string)
	require.NotEmpty(t, id)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/ideas", first, nil))

	var saved ideaList
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/ideas?saved=true", nil, &saved))
	require.Len(t, saved.Ideas, 1)
	assert.Equal(t, id, saved.Ideas[0]["id"])

	var vote map[string]interface{}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/ideas/"+id+"/upvote", nil, &vote))
	assert.Equal(t, true, vote["isUpvoted"])
	assert.EqualValues(t, 1, vote["upvotes"])

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/ideas/"+id+"/upvote", nil, &vote))
	assert.Equal(t, false, vote["isUpvoted"])
	assert.EqualValues(t, 0, vote["upvotes"])

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/ideas/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/ideas/"+id, nil, nil))
}

func TestEndToEnd_SessionRoadmapSurvivesReopen(t *testing.T) {
	s := setup(t)

	var generated ideaList
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/ideas/generate",
		map[string]string{"industry": "printing"}, &generated))
	idea := generated.Ideas[0]

	var snap session.Snapshot
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/open", map[string]interface{}{"idea": idea}, &snap))
	assert.Equal(t, session.TabBlueprint, snap.ActiveTab)
	assert.Equal(t, session.Loaded, snapState(t, s, session.TabBlueprint))

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/tab", map[string]string{"tab": "roadmap"}, nil))
	var progress map[string]int
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/roadmap/toggle",
		map[string]int{"phase": 0, "step": 1}, &progress))
	assert.Equal(t, 25, progress["progress"])

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/api/session/close", nil, nil))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/open", map[string]interface{}{"idea": idea}, nil))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/tab", map[string]string{"tab": "roadmap"}, &snap))
	assert.Equal(t, 25, snap.RoadmapProgress)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/tab", map[string]string{"tab": "roi"}, &snap))
	require.NotNil(t, snap.Metrics)
	assert.Equal(t, 4.0, snap.Metrics.BreakEvenMonths)
}

func snapState(t *testing.T, s *stack, tab session.Tab) session.SlotState {
	var snap session.Snapshot
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/session", nil, &snap))
	return snap.Slots[tab].State
}
