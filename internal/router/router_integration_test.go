//go:build integration

package router

// Runs the full HTTP stack against real Postgres and Redis containers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gescom/internal/config"
	"gescom/internal/dto"
	"gescom/internal/infra"
	"gescom/internal/model"
	"gescom/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer) *http.Response {
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
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// create posts body and decodes the 201 response into dest.
func create(t *testing.T, srv *httptest.Server, path string, body, dest any) {
	t.Helper()
	resp := do(t, srv, http.MethodPost, path, jsonBody(t, body))
	require.Equal(t, http.StatusCreated, resp.StatusCode, path)
	decodeJSON(t, resp, dest)
}

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("gescom_test"),
		tcPostgres.WithUsername("gescom"),
		tcPostgres.WithPassword("gescom"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                        "test",
		AllowedOrigins:             "*",
		RateLimitRPM:               10000,
		DatabaseURL:                pgURL,
		RedisURL:                   rdURL,
		StockCacheTTL:              time.Minute,
		PDFStoragePath:             t.TempDir(),
		RaisonSociale:              "GESCOM TEST",
		LivraisonCommandeMode:      config.LivraisonSynchronisee,
		ReceptionLibereReservation: true,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	require.NoError(t, err)
	require.NoError(t, infra.AutoMigrate(db))

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	srv := httptest.NewServer(New(ctx, cfg, db, rdb, infra.NewCircuitBreaker(infra.SMTPBreakerConfig())))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, rdb: rdb}
}

type idOnly struct {
	ID string `json:"id"`
}

func (env *testEnv) article(t *testing.T, ref string) string {
	t.Helper()
	var a idOnly
	create(t, env.server, "/v1/articles", map[string]any{
		"reference":     ref,
		"designation":   "Article " + ref,
		"prix_achat_ht": "10",
		"prix_vente_ht": "15",
		"tva":           "19",
	}, &a)
	return a.ID
}

func (env *testEnv) articleStock(t *testing.T, id string) dto.ArticleStockResponse {
	t.Helper()
	resp := do(t, env.server, http.MethodGet, "/v1/articles/"+id+"/stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s dto.ArticleStockResponse
	decodeJSON(t, resp, &s)
	return s
}

func (env *testEnv) depotStock(t *testing.T, depotID, articleID string) decimal.Decimal {
	t.Helper()
	resp := do(t, env.server, http.MethodGet, "/v1/depots/"+depotID+"/stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s dto.DepotStockResponse
	decodeJSON(t, resp, &s)
	for _, l := range s.Lignes {
		if l.ArticleID == articleID {
			return l.Qte
		}
	}
	return decimal.Zero
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestIntegration_StockMultiDepot(t *testing.T) {
	env := setupTestEnv(t)
	cable := env.article(t, "CAB-2.5")

	var central, annexe idOnly
	create(t, env.server, "/v1/depots", map[string]any{"nom": "Central"}, &central)
	create(t, env.server, "/v1/depots", map[string]any{"nom": "Annexe"}, &annexe)

	resp := do(t, env.server, http.MethodPost, "/v1/depots", jsonBody(t, map[string]any{"nom": "Central"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "nom de dépôt unique")
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPost, "/v1/depots/"+central.ID+"/ajustements",
		jsonBody(t, map[string]any{"article_id": cable, "delta": "10"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Warm the cache, then make sure the transfer invalidates it.
	assert.True(t, decimal.NewFromInt(10).Equal(env.depotStock(t, central.ID, cable)))

	var tr dto.TransfertResponse
	create(t, env.server, "/v1/transferts", map[string]any{
		"depot_source_id":      central.ID,
		"depot_destination_id": annexe.ID,
		"items":                []map[string]any{{"article_id": cable, "qte": "4"}},
	}, &tr)
	assert.Regexp(t, `^TR-0001/\d{4}$`, tr.Numero)
	assert.True(t, decimal.NewFromInt(6).Equal(env.depotStock(t, central.ID, cable)))
	assert.True(t, decimal.NewFromInt(4).Equal(env.depotStock(t, annexe.ID, cable)))

	resp = do(t, env.server, http.MethodPost, "/v1/transferts", jsonBody(t, map[string]any{
		"depot_source":      "Central",
		"depot_destination": "Annexe",
		"items":             []map[string]any{{"article_id": cable, "qte": "7"}},
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "stock insuffisant")
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPatch, "/v1/transferts/"+tr.ID+"/statut", jsonBody(t, map[string]string{"statut": "Annulé"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, decimal.NewFromInt(10).Equal(env.depotStock(t, central.ID, cable)))
	assert.True(t, env.depotStock(t, annexe.ID, cable).IsZero())

	s := env.articleStock(t, cable)
	assert.True(t, decimal.NewFromInt(10).Equal(s.TotalDepots))

	// The cancelled transfer keeps Annexe in the history.
	resp = do(t, env.server, http.MethodDelete, "/v1/depots/"+annexe.ID+"?destination="+central.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, decimal.NewFromInt(10).Equal(env.depotStock(t, central.ID, cable)))
}

func TestIntegration_CycleAchatVente(t *testing.T) {
	env := setupTestEnv(t)
	cable := env.article(t, "CAB-2.5")
	ctx := context.Background()

	var four, client idOnly
	create(t, env.server, "/v1/fournisseurs", map[string]any{"raison_sociale": "Câbles du Nord", "matricule_fiscal": "1234567A"}, &four)
	create(t, env.server, "/v1/clients", map[string]any{"nom": "Sfax Équipement"}, &client)

	var bc dto.BonCommandeResponse
	create(t, env.server, "/v1/bons-commande", map[string]any{
		"fournisseur_id": four.ID,
		"lignes":         []map[string]any{{"article_id": cable, "quantite": "10", "prix_unitaire": "12"}},
	}, &bc)
	assert.Regexp(t, `^BC-0001/\d{4}$`, bc.NumeroCommande)
	assert.True(t, decimal.NewFromInt(10).Equal(env.articleStock(t, cable).QteVirtual))

	var br dto.BonReceptionResponse
	create(t, env.server, "/v1/bons-reception", map[string]any{
		"fournisseur_id":  four.ID,
		"bon_commande_id": bc.ID,
		"lignes":          []map[string]any{{"article_id": cable, "quantite": "6", "prix_unitaire": "12"}},
	}, &br)
	s := env.articleStock(t, cable)
	assert.True(t, decimal.NewFromInt(6).Equal(s.QtePhysique))
	assert.True(t, decimal.NewFromInt(4).Equal(s.QteVirtual))

	var cc dto.CommandeClientResponse
	create(t, env.server, "/v1/commandes-client", map[string]any{
		"client_id": client.ID,
		"lignes":    []map[string]any{{"article_id": cable, "quantite": "5", "prix_unitaire": "20"}},
	}, &cc)

	var bl dto.LivraisonResponse
	create(t, env.server, "/v1/bons-livraison", map[string]any{
		"bon_commande_client_id": cc.ID,
		"lignes":                 []map[string]any{{"article_id": cable, "quantite": "2"}},
	}, &bl)
	assert.Regexp(t, `^BL-00001/\d{4}$`, bl.NumeroLivraison)
	assert.True(t, decimal.NewFromInt(4).Equal(env.articleStock(t, cable).QtePhysique))

	resp := do(t, env.server, http.MethodGet, "/v1/commandes-client/"+cc.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &cc)
	assert.Equal(t, model.StatutPartiellementLivre, cc.Statut)

	// Dispatch only enqueues: no worker pool runs in this test.
	resp = do(t, env.server, http.MethodPost, "/v1/bons-livraison/"+bl.ID+"/envoyer",
		jsonBody(t, map[string]string{"email": "client@sfax.tn"}))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()
	n, err := env.rdb.LLen(ctx, worker.QueueDocument).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	resp = do(t, env.server, http.MethodPost, "/v1/bons-livraison/"+bl.ID+"/annuler", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, decimal.NewFromInt(6).Equal(env.articleStock(t, cable).QtePhysique))
}
