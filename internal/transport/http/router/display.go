package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-signage-cms/internal/transport/http/ez"
	mdw "go-signage-cms/internal/transport/http/middleware"
	resp "go-signage-cms/internal/transport/http/response"
)

// mountDisplay 大屏读路径，不设鉴权，打点永远 200
func mountDisplay(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)

	e.GET("/display/feed", func(c *gin.Context) (any, error) {
		return d.Feed.ActiveFeed(c), nil
	})

	g.POST("/display/slides/:id/view", func(c *gin.Context) {
		d.Feed.RecordSlideView(c, c.Param("id"))
		mdw.CountSlideView()
		c.JSON(http.StatusOK, resp.OK(gin.H{"recorded": true}))
	})

	g.POST("/display/slideshows/:id/view", func(c *gin.Context) {
		d.Feed.RecordShowView(c, c.Param("id"))
		c.JSON(http.StatusOK, resp.OK(gin.H{"recorded": true}))
	})
}
