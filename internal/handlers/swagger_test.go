package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kosarica/grooming-service/docs"
	"github.com/kosarica/grooming-service/internal/calendar"
)

func TestSwaggerDocServed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/internal", doc.BasePath)

	// every documented route must be one Register mounts
	router = gin.New()
	New(nil, nil, nil, calendar.Grid{}, zerolog.Nop()).Register(router.Group(""))
	mounted := map[string]bool{}
	for _, r := range router.Routes() {
		mounted[strings.ToLower(r.Method)+" "+swaggerPath(r.Path)] = true
	}
	for path, ops := range doc.Paths {
		for method := range ops {
			assert.True(t, mounted[method+" "+path], "%s %s is documented but not mounted", method, path)
		}
	}
}

// swaggerPath rewrites gin's :param segments as {param}
func swaggerPath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "{" + part[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}
