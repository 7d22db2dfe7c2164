package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrichat/backend/internal/service"
)

const missingInputMessage = "Please select a condition and ask a question."

// AdviceHandler serves dietary advice
type AdviceHandler struct {
	advisor service.IAdvisorService
}

// NewAdviceHandler creates a new AdviceHandler instance
func NewAdviceHandler(advisor service.IAdvisorService) *AdviceHandler {
	return &AdviceHandler{advisor: advisor}
}

// RegisterRoutes registers the advice routes
func (h *AdviceHandler) RegisterRoutes(router *gin.RouterGroup, extra ...gin.HandlerFunc) {
	router.GET("/conditions", h.Conditions)
	router.POST("/advice", append(extra, h.Advice)...)
}

// Conditions lists the conditions a user can pick
func (h *AdviceHandler) Conditions(c *gin.Context) {
	c.JSON(http.StatusOK, ConditionsResponse{Conditions: h.advisor.Conditions()})
}

// Advice answers one question. Soft failures (unknown food, no data,
// generation trouble) are still 200s; the result status says which.
func (h *AdviceHandler) Advice(c *gin.Context) {
	var req AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingInputMessage})
		return
	}

	condition := strings.TrimSpace(req.Condition)
	query := strings.TrimSpace(req.Query)
	if condition == "" || query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingInputMessage})
		return
	}

	res := h.advisor.Answer(c.Request.Context(), condition, query)

	c.JSON(http.StatusOK, AdviceResponse{
		RequestID: c.GetString("request_id"),
		Result:    res,
		Message:   res.Message(),
	})
}
