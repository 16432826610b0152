// Package api exposes a read-only JSON view of the shop for operators.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/m3rciful/shopbot/shop/catalog"
	"github.com/m3rciful/shopbot/shop/order"
)

// StatsSource reports order counters.
type StatsSource interface {
	Stats() order.Stats
}

// Register mounts the shop routes on r. stats may be nil.
func Register(r *gin.Engine, products catalog.Store, stats StatsSource) {
	r.GET("/api/products", listProducts(products))
	r.GET("/api/products/:id", getProduct(products))
	if stats != nil {
		r.GET("/api/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"code": 0, "data": stats.Stats()})
		})
	}
}

func listProducts(products catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

func getProduct(products catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid product id"})
			return
		}
		p, err := products.Get(c.Request.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": p})
	}
}
