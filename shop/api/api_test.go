package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/shop/catalog"
	"github.com/m3rciful/shopbot/shop/order"
)

type fixedStats order.Stats

func (s fixedStats) Stats() order.Stats { return order.Stats(s) }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, catalog.NewMemory(
		catalog.Product{Name: "Shirt", Price: decimal.NewFromInt(450)},
		catalog.Product{Name: "Jeans", Price: decimal.RequireFromString("1200.50")},
	), fixedStats{Dispatched: 3, Failed: 1})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListProducts(t *testing.T) {
	rec := get(newRouter(t), "/api/products")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Jeans", body.Data[1].Name)
	assert.True(t, body.Data[1].Price.Equal(decimal.RequireFromString("1200.5")))
}

func TestGetProduct(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, http.StatusOK, get(r, "/api/products/1").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/products/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/products/abc").Code)
}

func TestStats(t *testing.T) {
	rec := get(newRouter(t), "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":0,"data":{"dispatched":3,"notify_failed":1}}`, rec.Body.String())
}
