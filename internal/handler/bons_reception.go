package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
)

type BonsReceptionHandler struct{ svc service.BonReceptionService }

func NewBonsReceptionHandler(svc service.BonReceptionService) *BonsReceptionHandler {
	return &BonsReceptionHandler{svc: svc}
}

// Creer godoc
// @Summary      Enregistrer une réception fournisseur
// @Description  Ajoute chaque quantité reçue à qte et qte_physique.
// @Tags         bons-reception
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.BonReceptionRequest true "Fournisseur, bon de commande optionnel et lignes"
// @Success      201  {object} dto.BonReceptionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/bons-reception [post]
func (h *BonsReceptionHandler) Creer(c *gin.Context) {
	var req dto.BonReceptionRequest
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

func (h *BonsReceptionHandler) Modifier(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.BonReceptionRequest
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

func (h *BonsReceptionHandler) Supprimer(c *gin.Context) {
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

func (h *BonsReceptionHandler) Obtenir(c *gin.Context) {
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

func (h *BonsReceptionHandler) Lister(c *gin.Context) {
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

func (h *BonsReceptionHandler) ProchainNumero(c *gin.Context) {
	resp, err := h.svc.ProchainNumero(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
