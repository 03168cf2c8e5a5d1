package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
)

type TransfertsHandler struct{ svc service.TransfertService }

func NewTransfertsHandler(svc service.TransfertService) *TransfertsHandler {
	return &TransfertsHandler{svc: svc}
}

// Creer godoc
// @Summary      Créer un transfert inter-dépôts
// @Description  Débite le dépôt source et crédite la destination pour chaque article, tout ou rien. Refusé si le stock source est insuffisant.
// @Tags         transferts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.TransfertRequest true "Dépôts et articles"
// @Success      201  {object} dto.TransfertResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/transferts [post]
func (h *TransfertsHandler) Creer(c *gin.Context) {
	var req dto.TransfertRequest
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

// Modifier godoc
// @Summary      Modifier un transfert
// @Tags         transferts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string               true "UUID du transfert"
// @Param        body body     dto.TransfertRequest true "Nouvel état complet"
// @Success      200  {object} dto.TransfertResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/transferts/{id} [put]
func (h *TransfertsHandler) Modifier(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.TransfertRequest
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

// ChangerStatut godoc
// @Summary      Changer le statut d'un transfert
// @Description  Annulé inverse les mouvements, Annulé → Terminé les réapplique, Annulé → En cours est refusé.
// @Tags         transferts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                     true "UUID du transfert"
// @Param        body body     dto.StatutTransfertRequest true "Nouveau statut"
// @Success      200  {object} dto.TransfertResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/transferts/{id}/statut [patch]
func (h *TransfertsHandler) ChangerStatut(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.StatutTransfertRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ChangerStatut(c.Request.Context(), id, req.Statut)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransfertsHandler) Supprimer(c *gin.Context) {
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

func (h *TransfertsHandler) Obtenir(c *gin.Context) {
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

func (h *TransfertsHandler) Lister(c *gin.Context) {
	var filter dto.TransfertFilter
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

func (h *TransfertsHandler) ProchainNumero(c *gin.Context) {
	resp, err := h.svc.ProchainNumero(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
