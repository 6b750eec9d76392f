package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/grooming-service/internal/types"
)

// ClassifyRequest carries line items to classify without persisting
type ClassifyRequest struct {
	Items []types.LineItem `json:"items"`
	// Rules replaces the stored rules for this call when not empty
	Rules []types.ClassificationRule `json:"rules,omitempty"`
}

// Classify returns the revenue flags of a set of items
// @Summary Classify line items
// @Tags classification
// @Accept json
// @Produce json
// @Param request body ClassifyRequest true "Items"
// @Success 200 {object} classification.Flags
// @Failure 400 {object} map[string]string "Bad request"
// @Router /classification/classify [post]
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.ClassifyItems(c.Request.Context(), req.Items, req.Rules))
}

// ClassifyTransaction classifies a stored transaction and persists the flags
// @Summary Classify a stored transaction
// @Tags classification
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} classification.Flags
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /transactions/{id}/classify [post]
func (h *Handler) ClassifyTransaction(c *gin.Context) {
	flags, err := h.service.ClassifyTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.hub != nil {
		h.broadcastAnalyticsChanged([]string{"transactions"})
	}
	c.JSON(http.StatusOK, flags)
}

// RulesBody is the ordered rule set
type RulesBody struct {
	Rules []types.ClassificationRule `json:"rules" binding:"required" jsonschema:"required"`
}

// GetRules returns the stored classification rules
// @Summary List classification rules
// @Tags classification
// @Produce json
// @Success 200 {object} RulesBody
// @Router /classification/rules [get]
func (h *Handler) GetRules(c *gin.Context) {
	rules, err := h.service.Rules(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RulesBody{Rules: rules})
}

// PutRules replaces the classification rules
// @Summary Replace classification rules
// @Description Rules are validated as a whole; one invalid rule rejects the set
// @Tags classification
// @Accept json
// @Produce json
// @Param request body RulesBody true "Rules"
// @Success 200 {object} RulesBody
// @Failure 400 {object} map[string]string "Bad request"
// @Router /classification/rules [put]
func (h *Handler) PutRules(c *gin.Context) {
	var body RulesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.service.ReplaceRules(ctx, body.Rules); err != nil {
		h.respondError(c, err)
		return
	}
	rules, err := h.service.Rules(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RulesBody{Rules: rules})
}
