package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
)

type LivraisonsHandler struct{ svc service.LivraisonService }

func NewLivraisonsHandler(svc service.LivraisonService) *LivraisonsHandler {
	return &LivraisonsHandler{svc: svc}
}

// Creer godoc
// @Summary      Créer un bon de livraison
// @Description  Chaque quantité livrée sort de qte et qte_physique. Avec une commande client, le client et le vendeur sont repris de la commande.
// @Tags         bons-livraison
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreerLivraisonRequest true "Commande ou client, lignes"
// @Success      201  {object} dto.LivraisonResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/bons-livraison [post]
func (h *LivraisonsHandler) Creer(c *gin.Context) {
	var req dto.CreerLivraisonRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.VendeurID = vendeurParDefaut(c, req.VendeurID)
	resp, err := h.svc.Creer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *LivraisonsHandler) Modifier(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ModifierLivraisonRequest
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
// @Summary      Annuler un bon de livraison
// @Description  Réintègre les quantités livrées en stock.
// @Tags         bons-livraison
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID du bon"
// @Success      200  {object} dto.LivraisonResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/bons-livraison/{id}/annuler [post]
func (h *LivraisonsHandler) Annuler(c *gin.Context) {
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

func (h *LivraisonsHandler) Supprimer(c *gin.Context) {
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

func (h *LivraisonsHandler) Obtenir(c *gin.Context) {
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

func (h *LivraisonsHandler) Lister(c *gin.Context) {
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

func (h *LivraisonsHandler) ProchainNumero(c *gin.Context) {
	resp, err := h.svc.ProchainNumero(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LivraisonsHandler) Envoyer(c *gin.Context) {
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
