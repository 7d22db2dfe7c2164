package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrichat/backend/config"
	"github.com/pageza/nutrichat/backend/internal/knowledge"
	"github.com/pageza/nutrichat/backend/internal/models"
	"github.com/pageza/nutrichat/backend/internal/server"
	"github.com/pageza/nutrichat/backend/internal/service"
	"github.com/pageza/nutrichat/backend/internal/testhelpers"
)

func testConfig(source string) *config.Config {
	return &config.Config{
		ServerHost:      "127.0.0.1",
		ServerPort:      "0",
		KnowledgeSource: source,
		KnowledgeTable:  knowledge.DefaultTable,
		LLMProvider:     config.ProviderStatic,
		LLMModel:        "static",
		LLMStaticText:   "Yes, apples are great.",
		Generation: config.GenerationSettings{
			MaxNewTokens:      60,
			TopK:              50,
			Temperature:       0.7,
			NoRepeatNGramSize: 2,
			Timeout:           time.Second,
		},
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("csv source end to end", func(t *testing.T) {
		cfg := testConfig(testhelpers.WriteCSV(t, testhelpers.SampleRecords()))
		a, err := Build(ctx, cfg, zerolog.Nop())
		require.NoError(t, err)
		defer a.Close()

		assert.Nil(t, a.Limiter)
		assert.Equal(t, 5, a.Store.Len())
		assert.Equal(t, "static", a.Gateway.Model())

		res := a.Advisor.Answer(ctx, "Hypertension", "Can I eat apples?")
		assert.Equal(t, service.StatusGenerated, res.Status)
		assert.Equal(t, "Yes, apples are great.", *res.GeneratedText)

		res = a.Advisor.Answer(ctx, "Diabetes", "Is bacon okay?")
		assert.Equal(t, service.StatusNoDataForCondition, res.Status)
	})

	t.Run("sqlite source", func(t *testing.T) {
		_, dsn := testhelpers.SetupSQLite(t, testhelpers.SampleRecords())
		a, err := Build(ctx, testConfig(dsn), zerolog.Nop())
		require.NoError(t, err)
		defer a.Close()
		assert.Equal(t, []string{"Diabetes", "Hypertension"}, a.Advisor.Conditions())
	})

	t.Run("missing knowledge file is fatal", func(t *testing.T) {
		_, err := Build(ctx, testConfig("/nonexistent/foods.csv"), zerolog.Nop())
		var le *knowledge.LoadError
		require.True(t, errors.As(err, &le))
		assert.ErrorIs(t, err, knowledge.ErrSourceNotFound)
	})

	t.Run("unreachable model is fatal", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		cfg := testConfig(testhelpers.WriteCSV(t, testhelpers.SampleRecords()))
		cfg.LLMProvider = config.ProviderOllama
		cfg.LLMAPIURL = srv.URL
		cfg.LLMModel = "my-food-chatbot-model-v3"

		_, err := Build(ctx, cfg, zerolog.Nop())
		var le *knowledge.LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, "model ollama:my-food-chatbot-model-v3", le.Source)
	})

	t.Run("redis unavailable is not fatal", func(t *testing.T) {
		cfg := testConfig(testhelpers.WriteCSV(t, testhelpers.SampleRecords()))
		cfg.RedisURL = "redis://127.0.0.1:1/0"

		a, err := Build(ctx, cfg, zerolog.Nop())
		require.NoError(t, err)
		defer a.Close()
		assert.Nil(t, a.Limiter)
	})
}

func TestApplesHypertensionScenario(t *testing.T) {
	ctx := context.Background()
	path := testhelpers.WriteCSV(t, []models.FoodRecord{
		{FoodName: "Apples", Condition: "Hypertension", Recommendation: "Recommended", Explanation: "Low sodium content"},
	})
	a, err := Build(ctx, testConfig(path), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	query := "Are apples good for hypertension?"

	t.Run("matching condition", func(t *testing.T) {
		res := a.Advisor.Answer(ctx, "Hypertension", query)
		assert.Equal(t, service.StatusGenerated, res.Status)
		require.NotNil(t, res.MatchedFood)
		assert.Equal(t, "Apples", *res.MatchedFood)
		require.NotNil(t, res.Recommendation)
		assert.Equal(t, "Recommended", *res.Recommendation)
		assert.Equal(t, "A user with Hypertension asks about eating Apples. "+
			"The recommendation is 'Recommended'. "+
			"Explain why in a helpful, conversational tone, based on this key fact: 'Low sodium content'"+
			"\n\nHelpful Advice: ", res.Prompt)
		require.NotNil(t, res.GeneratedText)
		assert.Equal(t, "Yes, apples are great.", *res.GeneratedText)
	})

	t.Run("condition without data", func(t *testing.T) {
		res := a.Advisor.Answer(ctx, "Diabetes", query)
		assert.Equal(t, service.StatusNoDataForCondition, res.Status)
		require.NotNil(t, res.MatchedFood)
		assert.Equal(t, "Apples", *res.MatchedFood)
		assert.Nil(t, res.Recommendation)
		assert.Nil(t, res.Explanation)
		assert.Nil(t, res.GeneratedText)
		assert.Empty(t, res.Prompt)
	})
}

func TestRedisAddons(t *testing.T) {
	// Construction does not dial, so no server is needed
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	t.Run("rate limit zero disables limiter", func(t *testing.T) {
		cfg := testConfig("foods.csv")
		cfg.RateLimit = 0
		cfg.RateWindow = 0
		_, limiter := redisAddons(client, cfg, zerolog.Nop())
		assert.Nil(t, limiter)
	})

	t.Run("positive rate limit builds limiter", func(t *testing.T) {
		cfg := testConfig("foods.csv")
		cfg.RateLimit = 30
		cfg.RateWindow = time.Minute
		_, limiter := redisAddons(client, cfg, zerolog.Nop())
		assert.NotNil(t, limiter)
	})

	t.Run("cache off by default", func(t *testing.T) {
		cache, _ := redisAddons(client, testConfig("foods.csv"), zerolog.Nop())
		assert.Nil(t, cache)
	})

	t.Run("cache on with ttl", func(t *testing.T) {
		cfg := testConfig("foods.csv")
		cfg.CacheTTL = 10 * time.Minute
		cache, _ := redisAddons(client, cfg, zerolog.Nop())
		assert.NotNil(t, cache)
	})
}

func TestServeEndToEnd(t *testing.T) {
	cfg := testConfig(testhelpers.WriteCSV(t, testhelpers.SampleRecords()))
	a, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	handler := server.New(cfg, a.Advisor, a.Limiter, zerolog.Nop()).Handler()

	body, _ := json.Marshal(map[string]string{"condition": "Hypertension", "query": "Can I eat apples?"})
	req := httptest.NewRequest("POST", "/api/v1/advice", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Result struct {
			Status        string  `json:"status"`
			MatchedFood   *string `json:"matched_food"`
			GeneratedText *string `json:"generated_text"`
		} `json:"result"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "generated", resp.Result.Status)
	assert.Equal(t, "Apples", *resp.Result.MatchedFood)
	assert.Equal(t, "Yes, apples are great.", *resp.Result.GeneratedText)
	assert.Equal(t, "Advice for eating 'Apples' with 'Hypertension':", resp.Message)
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(testhelpers.WriteCSV(t, testhelpers.SampleRecords()))
	a, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
