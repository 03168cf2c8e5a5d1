package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
)

type BonsCommandeHandler struct{ svc service.BonCommandeService }

func NewBonsCommandeHandler(svc service.BonCommandeService) *BonsCommandeHandler {
	return &BonsCommandeHandler{svc: svc}
}

// Creer godoc
// @Summary      Créer un bon de commande fournisseur
// @Description  Le bon est confirmé à la création ; chaque ligne réserve sa quantité dans qte_virtual.
// @Tags         bons-commande
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.BonCommandeRequest true "Fournisseur et lignes"
// @Success      201  {object} dto.BonCommandeResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/bons-commande [post]
func (h *BonsCommandeHandler) Creer(c *gin.Context) {
	var req dto.BonCommandeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Creer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BonsCommandeHandler) Modifier(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.BonCommandeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Modifier(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Annuler godoc
// @Summary      Annuler un bon de commande
// @Description  Libère la réservation restante. Annuler deux fois ne libère rien de plus.
// @Tags         bons-commande
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID du bon"
// @Success      200  {object} dto.BonCommandeResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/bons-commande/{id}/annuler [post]
func (h *BonsCommandeHandler) Annuler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Annuler(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BonsCommandeHandler) Supprimer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Supprimer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BonsCommandeHandler) Obtenir(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtenir(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BonsCommandeHandler) Lister(c *gin.Context) {
	var filter dto.DocumentFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Lister(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BonsCommandeHandler) ProchainNumero(c *gin.Context) {
	resp, err := h.svc.ProchainNumero(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Envoyer godoc
// @Summary      Envoyer le bon de commande par email
// @Description  Met en file la génération du PDF puis son envoi.
// @Tags         bons-commande
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                     true "UUID du bon"
// @Param        body body     dto.EnvoyerDocumentRequest true "Destinataire"
// @Success      202  {object} dto.EnvoiResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/bons-commande/{id}/envoyer [post]
func (h *BonsCommandeHandler) Envoyer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.EnvoyerDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Envoyer(c.Request.Context(), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.EnvoiResponse{Message: "Envoi programmé"})
}
