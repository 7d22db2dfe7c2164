package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrichat/backend/internal/middleware"
	"github.com/pageza/nutrichat/backend/internal/mocks"
)

func setupAdviceRouter() (*gin.Engine, *mocks.MockAdvisorService) {
	gin.SetMode(gin.TestMode)
	advisor := new(mocks.MockAdvisorService)

	router := gin.New()
	router.Use(middleware.RequestID())
	NewAdviceHandler(advisor).RegisterRoutes(router.Group("/api/v1"))
	return router, advisor
}

// PerformRequest performs a test request with an optional JSON body
func PerformRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		var raw []byte
		if s, ok := body.(string); ok {
			raw = []byte(s)
		} else {
			var err error
			if raw, err = json.Marshal(body); err != nil {
				panic(err)
			}
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	router.ServeHTTP(w, req)
	return w
}
