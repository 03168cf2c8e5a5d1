package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
)

type ArticlesHandler struct{ svc service.ArticleService }

func NewArticlesHandler(svc service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{svc: svc}
}

func (h *ArticlesHandler) Creer(c *gin.Context) {
	var req dto.CreerArticleRequest
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

func (h *ArticlesHandler) Lister(c *gin.Context) {
	var filter dto.ArticleFilter
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

func (h *ArticlesHandler) Obtenir(c *gin.Context) {
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

func (h *ArticlesHandler) Modifier(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ModifierArticleRequest
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

func (h *ArticlesHandler) Desactiver(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Desactiver(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stock godoc
// @Summary      Stock d'un article
// @Description  Compteurs qte / qte_physique / qte_virtual et répartition par dépôt.
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de l'article"
// @Success      200  {object} dto.ArticleStockResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/articles/{id}/stock [get]
func (h *ArticlesHandler) Stock(c *gin.Context) {
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
