//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gokatarajesh/problem-bank/internal/auth/jwt"
	"github.com/gokatarajesh/problem-bank/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/problem-bank/internal/db/sqlc"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

// editorToken mints a token with the server's secret, or returns "" when the
// server runs with write routes open.
func editorToken(t *testing.T) string {
	t.Helper()

	secret := os.Getenv("INTEGRATION_JWT_SECRET")
	if secret == "" {
		return ""
	}
	mgr := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(secret),
		Issuer: envOrDefault("INTEGRATION_JWT_ISSUER", "problem-bank"),
	})
	token, err := mgr.GenerateAccessToken("integration", jwt.RoleEditor)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// seedTopic creates a fresh topic through INTEGRATION_PG_DSN, falling back to
// INTEGRATION_TOPIC_ID. Tests skip when neither is set.
func seedTopic(t *testing.T) int64 {
	t.Helper()

	if dsn := os.Getenv("INTEGRATION_PG_DSN"); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			t.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		topic, err := repository.NewTopicRepository(sqlcgen.New(pool)).
			Create(ctx, fmt.Sprintf("integration-%d", time.Now().UnixNano()))
		if err != nil {
			t.Fatalf("create topic: %v", err)
		}
		return topic.TopicID
	}

	raw := os.Getenv("INTEGRATION_TOPIC_ID")
	if raw == "" {
		t.Skip("set INTEGRATION_PG_DSN or INTEGRATION_TOPIC_ID to run problem flows")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		t.Fatalf("invalid INTEGRATION_TOPIC_ID %q: %v", raw, err)
	}
	return id
}

func makeRequest(t *testing.T, method, url, token string, payload interface{}) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		var errResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		resp.Body.Close()
		t.Fatalf("expected %d, got %d, body: %v", want, resp.StatusCode, errResp)
	}
}
