package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/grooming-service/internal/live"
	"github.com/kosarica/grooming-service/internal/optimistic"
	"github.com/kosarica/grooming-service/internal/types"
)

// CategoryRequest is the new category of a product
type CategoryRequest struct {
	Category string `json:"category" binding:"required" jsonschema:"required,minLength=1"`
}

// CategoryResponse is the settled product and the final update state
type CategoryResponse struct {
	UpdateID string           `json:"update_id"`
	State    optimistic.State `json:"state"`
	Product  types.Product    `json:"product"`
	Error    string           `json:"error,omitempty"`
}

// UpdateProductCategory changes a product category optimistically. Every
// state change is pushed to websocket clients on the catalog topic.
// @Summary Update product category
// @Description Pending, confirmed and rolled back states are broadcast as category_update messages
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} CategoryResponse "Write failed and was rolled back"
// @Router /catalog/products/{id}/category [patch]
func (h *Handler) UpdateProductCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}

	var last optimistic.Transition[types.Product]
	observer := func(t optimistic.Transition[types.Product]) {
		last = t
		if h.hub != nil {
			h.hub.Broadcast(live.TopicCatalog, &live.OutgoingMessage{Type: live.MessageTypeCategoryUpdate, Data: t})
		}
	}

	product, err := h.service.UpdateProductCategory(c.Request.Context(), c.Param("id"), req.Category, observer)
	if err != nil && last.State != optimistic.RolledBack {
		// the product could not be read, nothing was attempted
		h.respondError(c, err)
		return
	}

	resp := CategoryResponse{UpdateID: last.ID, State: last.State, Product: product, Error: last.Err}
	if err != nil {
		c.JSON(http.StatusConflict, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) broadcastAnalyticsChanged(collections []string) {
	h.hub.Broadcast(live.TopicAnalytics, &live.OutgoingMessage{
		Type: live.MessageTypeAnalyticsChanged,
		Data: gin.H{"collections": collections},
	})
}
