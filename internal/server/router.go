package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/shopcart/internal/metrics"
)

func NewRouter(h *Handler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if m != nil {
		r.Use(metricsMiddleware(m))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/products", h.ListProducts)

	cart := v1.Group("/cart/:cartId")
	cart.GET("", h.GetCart)
	cart.POST("/items", h.AddItem)
	cart.PUT("/items/:productId", h.UpdateItem)
	cart.DELETE("/items/:productId", h.RemoveItem)
	cart.DELETE("", h.ClearCart)
	cart.POST("/checkout", h.Checkout)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}

		m.HTTPRequests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}
