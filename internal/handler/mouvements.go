package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
)

type MouvementsHandler struct{ svc service.InventaireService }

func NewMouvementsHandler(svc service.InventaireService) *MouvementsHandler {
	return &MouvementsHandler{svc: svc}
}

// Lister godoc
// @Summary      Journal des mouvements de stock
// @Tags         mouvements
// @Produce      json
// @Security     BearerAuth
// @Param        article_id   query string false "UUID de l'article"
// @Param        reference_id query string false "UUID du document"
// @Param        type         query string false "Type de mouvement"
// @Success      200  {object} dto.Page[dto.MouvementResponse]
// @Router       /v1/mouvements [get]
func (h *MouvementsHandler) Lister(c *gin.Context) {
	var filter dto.MouvementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListerMouvements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
