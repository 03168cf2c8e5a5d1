package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/middleware"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Service stubs ─────────────────────────────────────────────────────────────

type stubTransferts struct {
	service.TransfertService
	creer     func(dto.TransfertRequest) (*dto.TransfertResponse, error)
	supprimer func(uuid.UUID) error
	statut    string
}

func (s *stubTransferts) Creer(_ context.Context, req dto.TransfertRequest) (*dto.TransfertResponse, error) {
	return s.creer(req)
}

func (s *stubTransferts) ChangerStatut(_ context.Context, id uuid.UUID, statut string) (*dto.TransfertResponse, error) {
	s.statut = statut
	return &dto.TransfertResponse{ID: id.String(), Statut: statut}, nil
}

func (s *stubTransferts) Supprimer(_ context.Context, id uuid.UUID) error {
	return s.supprimer(id)
}

type stubCommandesClient struct {
	service.CommandeClientService
	recue dto.CreerCommandeClientRequest
}

func (s *stubCommandesClient) Creer(_ context.Context, req dto.CreerCommandeClientRequest) (*dto.CommandeClientResponse, error) {
	s.recue = req
	return &dto.CommandeClientResponse{ID: uuid.NewString(), VendeurID: req.VendeurID}, nil
}

type stubLivraisons struct {
	service.LivraisonService
	err   error
	email string
}

func (s *stubLivraisons) Envoyer(_ context.Context, _ uuid.UUID, email string) error {
	s.email = email
	return s.err
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func serve(r *gin.Engine, method, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func transfertsEngine(svc service.TransfertService) *gin.Engine {
	h := NewTransfertsHandler(svc)
	r := gin.New()
	r.POST("/v1/transferts", h.Creer)
	r.PATCH("/v1/transferts/:id/statut", h.ChangerStatut)
	r.DELETE("/v1/transferts/:id", h.Supprimer)
	return r
}

// ── Transferts ────────────────────────────────────────────────────────────────

func TestTransferts_Creer(t *testing.T) {
	svc := &stubTransferts{creer: func(req dto.TransfertRequest) (*dto.TransfertResponse, error) {
		return &dto.TransfertResponse{Numero: "TR-0001/2026", DepotSource: req.DepotSource}, nil
	}}
	r := transfertsEngine(svc)

	w := serve(r, http.MethodPost, "/v1/transferts", jsonBody(t, map[string]any{
		"depot_source":      "Central",
		"depot_destination": "Annexe",
		"items":             []map[string]any{{"article_id": uuid.NewString(), "qte": "3"}},
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.TransfertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "TR-0001/2026", resp.Numero)
	assert.Equal(t, "Central", resp.DepotSource)
}

func TestTransferts_CreerValidation(t *testing.T) {
	r := transfertsEngine(&stubTransferts{creer: func(dto.TransfertRequest) (*dto.TransfertResponse, error) {
		t.Fatal("le service ne doit pas être appelé")
		return nil, nil
	}})

	cases := map[string]any{
		"sans articles":    map[string]any{"depot_source": "Central", "depot_destination": "Annexe"},
		"quantité nulle":   map[string]any{"items": []map[string]any{{"article_id": uuid.NewString(), "qte": "0"}}},
		"article invalide": map[string]any{"items": []map[string]any{{"article_id": "cable", "qte": "1"}}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/v1/transferts", jsonBody(t, body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := serve(r, http.MethodPost, "/v1/transferts", bytes.NewReader([]byte("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferts_ErreursMetier(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apierror.Validation("stock insuffisant"), http.StatusBadRequest},
		{apierror.Conflict("transfert annulé"), http.StatusBadRequest},
		{apierror.NotFound("dépôt introuvable"), http.StatusNotFound},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &stubTransferts{creer: func(dto.TransfertRequest) (*dto.TransfertResponse, error) { return nil, tc.err }}
		w := serve(transfertsEngine(svc), http.MethodPost, "/v1/transferts", jsonBody(t, map[string]any{
			"depot_source":      "Central",
			"depot_destination": "Annexe",
			"items":             []map[string]any{{"article_id": uuid.NewString(), "qte": "1"}},
		}))
		assert.Equal(t, tc.status, w.Code)

		var body apierror.APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		if tc.status == http.StatusInternalServerError {
			assert.NotContains(t, body.Message, "pq:")
		} else {
			assert.Equal(t, tc.err.Error(), body.Message)
		}
	}
}

func TestTransferts_ChangerStatut(t *testing.T) {
	svc := &stubTransferts{}
	r := transfertsEngine(svc)
	id := uuid.New()

	w := serve(r, http.MethodPatch, "/v1/transferts/"+id.String()+"/statut", jsonBody(t, map[string]string{"statut": "Annulé"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Annulé", svc.statut)

	w = serve(r, http.MethodPatch, "/v1/transferts/"+id.String()+"/statut", jsonBody(t, map[string]string{"statut": "Livré"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPatch, "/v1/transferts/42/statut", jsonBody(t, map[string]string{"statut": "Annulé"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferts_Supprimer(t *testing.T) {
	var supprime uuid.UUID
	r := transfertsEngine(&stubTransferts{supprimer: func(id uuid.UUID) error {
		supprime = id
		return nil
	}})
	id := uuid.New()

	w := serve(r, http.MethodDelete, "/v1/transferts/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, id, supprime)
}

// ── Commandes client ──────────────────────────────────────────────────────────

func TestCommandesClient_VendeurParDefaut(t *testing.T) {
	svc := &stubCommandesClient{}
	h := NewCommandesClientHandler(svc)
	userID := uuid.NewString()

	r := gin.New()
	r.POST("/v1/commandes-client", func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: userID, Username: "amine", Role: middleware.RoleCommercial})
		c.Next()
	}, h.Creer)

	body := map[string]any{
		"client_id": uuid.NewString(),
		"lignes":    []map[string]any{{"article_id": uuid.NewString(), "quantite": "2", "prix_unitaire": "15"}},
	}
	w := serve(r, http.MethodPost, "/v1/commandes-client", jsonBody(t, body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, svc.recue.VendeurID)
	assert.Equal(t, userID, *svc.recue.VendeurID)

	explicite := uuid.NewString()
	body["vendeur_id"] = explicite
	w = serve(r, http.MethodPost, "/v1/commandes-client", jsonBody(t, body))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, explicite, *svc.recue.VendeurID)
}

func TestCommandesClient_SansAuthentification(t *testing.T) {
	svc := &stubCommandesClient{}
	r := gin.New()
	r.POST("/v1/commandes-client", NewCommandesClientHandler(svc).Creer)

	w := serve(r, http.MethodPost, "/v1/commandes-client", jsonBody(t, map[string]any{
		"client_id": uuid.NewString(),
		"lignes":    []map[string]any{{"article_id": uuid.NewString(), "quantite": "1", "prix_unitaire": "15"}},
	}))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, svc.recue.VendeurID)
}

// ── Livraisons ────────────────────────────────────────────────────────────────

func TestLivraisons_Envoyer(t *testing.T) {
	svc := &stubLivraisons{}
	r := gin.New()
	r.POST("/v1/livraisons/:id/envoyer", NewLivraisonsHandler(svc).Envoyer)
	path := "/v1/livraisons/" + uuid.NewString() + "/envoyer"

	w := serve(r, http.MethodPost, path, jsonBody(t, map[string]string{"email": "client@sfax.tn"}))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "client@sfax.tn", svc.email)

	w = serve(r, http.MethodPost, path, jsonBody(t, map[string]string{"email": "pas-un-email"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = apierror.Indisponible("file d'envoi indisponible")
	w = serve(r, http.MethodPost, path, jsonBody(t, map[string]string{"email": "client@sfax.tn"}))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
