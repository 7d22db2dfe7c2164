package api

import "github.com/pageza/nutrichat/backend/internal/service"

// AdviceRequest is the body of POST /api/v1/advice
type AdviceRequest struct {
	Condition string `json:"condition" binding:"required"`
	Query     string `json:"query" binding:"required"`
}

// AdviceResponse wraps the advice result with its display message
type AdviceResponse struct {
	RequestID string               `json:"request_id"`
	Result    service.AdviceResult `json:"result"`
	Message   string               `json:"message"`
}

// ConditionsResponse lists the selectable conditions
type ConditionsResponse struct {
	Conditions []string `json:"conditions"`
}
