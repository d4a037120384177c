package router

import (
	"github.com/gin-gonic/gin"

	"go-signage-cms/internal/transport/http/ez"
)

func mountStats(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)

	e.GET("/stats", func(c *gin.Context) (any, error) {
		return d.Stats.Overview(c)
	})
}
