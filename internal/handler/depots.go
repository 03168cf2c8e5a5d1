package handler

import (
	"net/http"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DepotsHandler struct{ svc service.DepotService }

func NewDepotsHandler(svc service.DepotService) *DepotsHandler {
	return &DepotsHandler{svc: svc}
}

func (h *DepotsHandler) Creer(c *gin.Context) {
	var req dto.DepotRequest
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

func (h *DepotsHandler) Lister(c *gin.Context) {
	resp, err := h.svc.Lister(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DepotsHandler) Obtenir(c *gin.Context) {
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

func (h *DepotsHandler) Modifier(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.DepotRequest
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

// Supprimer godoc
// @Summary      Supprimer un dépôt
// @Description  Les lignes de stock sont fusionnées dans le dépôt de destination s'il est fourni, sinon supprimées. Les compteurs des articles sont recalculés.
// @Tags         depots
// @Security     BearerAuth
// @Param        id          path  string true  "UUID du dépôt"
// @Param        destination query string false "UUID du dépôt recevant le stock"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Router       /v1/depots/{id} [delete]
func (h *DepotsHandler) Supprimer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var destination *uuid.UUID
	if raw := c.Query("destination"); raw != "" {
		d, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("destination invalide"))
			return
		}
		destination = &d
	}
	if err := h.svc.Supprimer(c.Request.Context(), id, destination); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Ajuster godoc
// @Summary      Ajuster le stock d'un article dans un dépôt
// @Tags         depots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                       true "UUID du dépôt"
// @Param        body body dto.AjusterStockDepotRequest true "Article et delta signé"
// @Success      200  {object} dto.StockDepotResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/depots/{id}/ajustements [post]
func (h *DepotsHandler) Ajuster(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.AjusterStockDepotRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ajuster(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DepotsHandler) Stock(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Stock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
