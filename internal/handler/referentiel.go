package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
)

// ReferentielHandler serves categories, suppliers and clients.
type ReferentielHandler struct {
	categories   service.CategorieService
	fournisseurs service.FournisseurService
	clients      service.ClientService
}

func NewReferentielHandler(categories service.CategorieService, fournisseurs service.FournisseurService, clients service.ClientService) *ReferentielHandler {
	return &ReferentielHandler{categories: categories, fournisseurs: fournisseurs, clients: clients}
}

// ── Categories ────────────────────────────────────────────────────────────────

func (h *ReferentielHandler) CreerCategorie(c *gin.Context) {
	var req dto.CategorieRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.categories.Creer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReferentielHandler) ListerCategories(c *gin.Context) {
	resp, err := h.categories.Lister(c.Request.Context(), c.Query("actives") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) ModifierCategorie(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.CategorieRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.categories.Modifier(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) DesactiverCategorie(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.categories.Desactiver(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Fournisseurs ──────────────────────────────────────────────────────────────

func (h *ReferentielHandler) CreerFournisseur(c *gin.Context) {
	var req dto.FournisseurRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.fournisseurs.Creer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReferentielHandler) ListerFournisseurs(c *gin.Context) {
	resp, err := h.fournisseurs.Lister(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) ObtenirFournisseur(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.fournisseurs.Obtenir(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) ModifierFournisseur(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.FournisseurRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.fournisseurs.Modifier(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) DesactiverFournisseur(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.fournisseurs.Desactiver(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (h *ReferentielHandler) CreerClient(c *gin.Context) {
	var req dto.ClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.clients.Creer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReferentielHandler) ListerClients(c *gin.Context) {
	resp, err := h.clients.Lister(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) ObtenirClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.clients.Obtenir(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) ModifierClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.clients.Modifier(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferentielHandler) DesactiverClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.clients.Desactiver(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReferentielHandler) ListerClientsWebsite(c *gin.Context) {
	resp, err := h.clients.ListerWebsite(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
