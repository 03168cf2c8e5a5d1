package handler

import (
	"net/http"

	"gescom/internal/dto"
	"gescom/internal/middleware"
	"gescom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommandesClientHandler struct{ svc service.CommandeClientService }

func NewCommandesClientHandler(svc service.CommandeClientService) *CommandesClientHandler {
	return &CommandesClientHandler{svc: svc}
}

// vendeurParDefaut attributes the order to the authenticated user when the
// request names no vendeur. Subjects that are not UUIDs are ignored.
func vendeurParDefaut(c *gin.Context, vendeurID *string) *string {
	if vendeurID != nil {
		return vendeurID
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil
	}
	s := id.String()
	return &s
}

// Creer godoc
// @Summary      Créer une commande client
// @Description  Client enregistré (client_id) ou client web (client_website_info). La part déjà livrée de chaque ligne sort du stock.
// @Tags         commandes-client
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreerCommandeClientRequest true "Client et lignes"
// @Success      201  {object} dto.CommandeClientResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/commandes-client [post]
func (h *CommandesClientHandler) Creer(c *gin.Context) {
	var req dto.CreerCommandeClientRequest
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

// Modifier godoc
// @Summary      Modifier une commande client
// @Description  Sans lignes, seul l'en-tête change. Les lignes ne peuvent plus changer une fois un bon de livraison émis.
// @Tags         commandes-client
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                            true "UUID de la commande"
// @Param        body body     dto.ModifierCommandeClientRequest true "Champs modifiés"
// @Success      200  {object} dto.CommandeClientResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/commandes-client/{id} [put]
func (h *CommandesClientHandler) Modifier(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ModifierCommandeClientRequest
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

func (h *CommandesClientHandler) Annuler(c *gin.Context) {
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

func (h *CommandesClientHandler) Supprimer(c *gin.Context) {
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

func (h *CommandesClientHandler) Obtenir(c *gin.Context) {
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

func (h *CommandesClientHandler) Lister(c *gin.Context) {
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

func (h *CommandesClientHandler) ProchainNumero(c *gin.Context) {
	resp, err := h.svc.ProchainNumero(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
