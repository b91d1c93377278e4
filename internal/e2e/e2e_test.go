//go:build integration

package e2e

// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/e2e/... -v
//
// Covered flows:
//   - purchase → derived material → SKU composition → sale
//   - insufficient stock refused with 409 and no partial writes
//   - destroy with return_to_stock restores the constituent materials
//   - reconcile reports clean ledgers after the above

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"crystalerp/internal/config"
	"crystalerp/internal/infra"
	"crystalerp/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("crystalerp_test"),
		tcPostgres.WithUsername("crystalerp"),
		tcPostgres.WithPassword("crystalerp"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-e2e-pass"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO operators (id, username, name, password_hash, role, active, created_at)
		VALUES (gen_random_uuid(), 'admin', 'Admin E2E', ?, 'admin', true, NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "admin-e2e-pass"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (env *testEnv) createPurchase(t *testing.T, body map[string]any) (purchaseID string, material struct {
	ID                string `json:"id"`
	OriginalQuantity  int    `json:"original_quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	UnitCost          string `json:"unit_cost"`
}) {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/purchases", jsonBody(t, body), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		ID       string `json:"id"`
		Material *struct {
			ID                string `json:"id"`
			OriginalQuantity  int    `json:"original_quantity"`
			RemainingQuantity int    `json:"remaining_quantity"`
			UnitCost          string `json:"unit_cost"`
		} `json:"material"`
	}
	decodeJSON(t, resp, &out)
	require.NotNil(t, out.Material)
	return out.ID, *out.Material
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_PurchaseToSaleCycle(t *testing.T) {
	env := setupTestEnv(t)

	// 10g of 8mm beads at 60 → 60 beads at unit cost 1.0000
	purchaseID, material := env.createPurchase(t, map[string]any{
		"purchase_name": "Amethyst 8mm",
		"purchase_type": "LOOSE_BEADS",
		"weight":        "10",
		"bead_diameter": "8",
		"total_price":   "60",
	})
	assert.Equal(t, 60, material.OriginalQuantity)

	// compose 2 bracelets, 25 beads each
	composeResp := do(t, env.server, "POST", "/v1/skus", jsonBody(t, map[string]any{
		"sku_name": "Amethyst Bracelet",
		"quantity": 2,
		"materials": []map[string]any{
			{"purchase_id": purchaseID, "quantity_used_beads": 25},
		},
		"labor_cost":    "10",
		"craft_cost":    "5",
		"selling_price": "100",
	}), env.token)
	require.Equal(t, http.StatusCreated, composeResp.StatusCode)
	var sku struct {
		ID                string `json:"id"`
		AvailableQuantity int    `json:"available_quantity"`
		MaterialCost      string `json:"material_cost"`
		TotalCost         string `json:"total_cost"`
		ProfitMargin      string `json:"profit_margin"`
	}
	decodeJSON(t, composeResp, &sku)
	assert.Equal(t, 2, sku.AvailableQuantity)
	assert.Equal(t, "25", sku.MaterialCost)
	assert.Equal(t, "40", sku.TotalCost)
	assert.Equal(t, "60", sku.ProfitMargin)

	// sell one unit
	sellResp := do(t, env.server, "POST", fmt.Sprintf("/v1/skus/%s/sell", sku.ID),
		jsonBody(t, map[string]any{"quantity": 1}), env.token)
	require.Equal(t, http.StatusOK, sellResp.StatusCode)
	var afterSale struct {
		AvailableQuantity int `json:"available_quantity"`
		TotalQuantity     int `json:"total_quantity"`
	}
	decodeJSON(t, sellResp, &afterSale)
	assert.Equal(t, 1, afterSale.AvailableQuantity)
	assert.Equal(t, 2, afterSale.TotalQuantity)

	// material sits at 50 used / 10 remaining
	matResp := do(t, env.server, "GET", "/v1/materials/"+material.ID, nil, env.token)
	require.Equal(t, http.StatusOK, matResp.StatusCode)
	var mat struct {
		UsedQuantity      int `json:"used_quantity"`
		RemainingQuantity int `json:"remaining_quantity"`
	}
	decodeJSON(t, matResp, &mat)
	assert.Equal(t, 50, mat.UsedQuantity)
	assert.Equal(t, 10, mat.RemainingQuantity)

	// reconcile reports clean ledgers
	recResp := do(t, env.server, "POST", "/v1/reconcile", nil, env.token)
	require.Equal(t, http.StatusOK, recResp.StatusCode)
	var report struct {
		Findings []any `json:"findings"`
	}
	decodeJSON(t, recResp, &report)
	assert.Empty(t, report.Findings)
}

func TestE2E_InsufficientStockRefusedWholly(t *testing.T) {
	env := setupTestEnv(t)

	purchaseID, material := env.createPurchase(t, map[string]any{
		"purchase_name": "Citrine 6mm",
		"purchase_type": "LOOSE_BEADS",
		"piece_count":   30,
		"total_price":   "30",
	})

	resp := do(t, env.server, "POST", "/v1/skus", jsonBody(t, map[string]any{
		"sku_name": "Citrine Strand",
		"quantity": 3,
		"materials": []map[string]any{
			{"purchase_id": purchaseID, "quantity_used_beads": 11}, // needs 33, have 30
		},
		"selling_price": "50",
	}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// no partial allocation happened
	matResp := do(t, env.server, "GET", "/v1/materials/"+material.ID, nil, env.token)
	var mat struct {
		UsedQuantity int `json:"used_quantity"`
	}
	decodeJSON(t, matResp, &mat)
	assert.Equal(t, 0, mat.UsedQuantity)
}

func TestE2E_DestroyReturnsStock(t *testing.T) {
	env := setupTestEnv(t)

	purchaseID, material := env.createPurchase(t, map[string]any{
		"purchase_name": "Jade Slices",
		"purchase_type": "ACCESSORIES",
		"specification": "15",
		"piece_count":   20,
		"total_price":   "200",
	})

	composeResp := do(t, env.server, "POST", "/v1/skus", jsonBody(t, map[string]any{
		"sku_name": "Jade Pendant",
		"quantity": 4,
		"materials": []map[string]any{
			{"purchase_id": purchaseID, "quantity_used_pieces": 2},
		},
		"selling_price": "80",
	}), env.token)
	require.Equal(t, http.StatusCreated, composeResp.StatusCode)
	var sku struct {
		ID string `json:"id"`
	}
	decodeJSON(t, composeResp, &sku)

	destroyResp := do(t, env.server, "POST", fmt.Sprintf("/v1/skus/%s/destroy", sku.ID),
		jsonBody(t, map[string]any{
			"quantity":        1,
			"return_to_stock": true,
			"reason":          "cracked during polishing",
		}), env.token)
	require.Equal(t, http.StatusOK, destroyResp.StatusCode)
	destroyResp.Body.Close()

	// 4×2 consumed at compose, 1×2 returned on destroy
	matResp := do(t, env.server, "GET", "/v1/materials/"+material.ID, nil, env.token)
	var mat struct {
		UsedQuantity      int `json:"used_quantity"`
		RemainingQuantity int `json:"remaining_quantity"`
	}
	decodeJSON(t, matResp, &mat)
	assert.Equal(t, 6, mat.UsedQuantity)
	assert.Equal(t, 14, mat.RemainingQuantity)
}
