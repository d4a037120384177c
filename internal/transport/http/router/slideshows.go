package router

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-signage-cms/internal/service"
	"go-signage-cms/internal/transport/http/ez"
	mdw "go-signage-cms/internal/transport/http/middleware"
	resp "go-signage-cms/internal/transport/http/response"
)

func mountSlideshows(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)

	e.GET("/slideshows", func(c *gin.Context) (any, error) {
		return d.Shows.List(c, mdw.PrincipalFrom(c))
	})

	ez.POST(e, "/slideshows", func(c *gin.Context, in service.CreateSlideshowInput) (any, error) {
		return d.Shows.Create(c, mdw.PrincipalFrom(c), in)
	})

	e.GET("/slideshows/:id", func(c *gin.Context) (any, error) {
		return d.Shows.Get(c, mdw.PrincipalFrom(c), c.Param("id"))
	})

	ez.RegisterAction(e, d.DB, ez.Action[service.UpdateSlideshowInput, *gin.H]{
		Method: "PATCH", Path: "/slideshows/:id", Binder: ez.BindJSON, Auth: true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *service.UpdateSlideshowInput) (*gin.H, error) {
			show, err := d.Shows.Update(c, mdw.PrincipalFrom(c), c.Param("id"), *in)
			if err != nil {
				return nil, err
			}
			return &gin.H{"slideshow": show}, nil
		},
	})

	ez.RegisterAction(e, d.DB, ez.Action[struct{}, gin.H]{
		Method: "DELETE", Path: "/slideshows/:id", Binder: ez.BindNone, Auth: true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := d.Shows.Delete(c, mdw.PrincipalFrom(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"deleted": true}, nil
		},
	})

	e.GET("/slideshows/:id/slides", func(c *gin.Context) (any, error) {
		return d.Shows.ListSlides(c, mdw.PrincipalFrom(c), c.Param("id"))
	})

	// 新增幻灯片：multipart 传文件，JSON 传外链。二选一
	g.POST("/slideshows/:id/slides", func(c *gin.Context) {
		in, ok := bindAddSlides(c)
		if !ok {
			return
		}
		created, err := d.Shows.AddSlides(c, mdw.PrincipalFrom(c), c.Param("id"), in)
		if err != nil {
			ez.WriteErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(created))
	})

	ez.RegisterAction(e, d.DB, ez.Action[service.UpdateSlideInput, *gin.H]{
		Method: "PATCH", Path: "/slides/:id", Binder: ez.BindJSON, Auth: true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *service.UpdateSlideInput) (*gin.H, error) {
			slide, err := d.Shows.UpdateSlide(c, mdw.PrincipalFrom(c), c.Param("id"), *in)
			if err != nil {
				return nil, err
			}
			return &gin.H{"slide": slide}, nil
		},
	})

	ez.RegisterAction(e, d.DB, ez.Action[struct{}, gin.H]{
		Method: "DELETE", Path: "/slides/:id", Binder: ez.BindNone, Auth: true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := d.Shows.DeleteSlide(c, mdw.PrincipalFrom(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"deleted": true}, nil
		},
	})

	// 展示端报图挂了；未知 id 也回成功，不打断放映
	g.POST("/slides/:id/mark-not-loaded", func(c *gin.Context) {
		d.Feed.MarkSlideNotLoaded(c, c.Param("id"))
		c.JSON(http.StatusOK, resp.OK(gin.H{"marked": true}))
	})

	// 换图走上传，外链换法走 PATCH 的 imageUrl
	ez.POSTFILES(e, "/slides/:id/image", "image", func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
		if len(files) == 0 {
			return nil, ez.BadRequest("image file is required")
		}
		return d.Shows.ReplaceSlideImage(c, mdw.PrincipalFrom(c), c.Param("id"), files[0])
	})
}

// bindAddSlides 失败时已写响应，返回 ok=false
func bindAddSlides(c *gin.Context) (service.AddSlidesInput, bool) {
	var in service.AddSlidesInput

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "invalid multipart form: "+err.Error()))
			return in, false
		}
		in.Files = form.File["images"]
		in.Title = c.PostForm("title")
		in.Description = c.PostForm("description")
		in.ImageURL = c.PostForm("imageUrl")
		if v := c.PostForm("displayOrder"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "displayOrder must be an integer"))
				return in, false
			}
			in.DisplayOrder = &n
		}
		return in, true
	}

	var body struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ImageURL     string `json:"imageUrl"`
		DisplayOrder *int   `json:"displayOrder"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return in, false
	}
	in.Title = body.Title
	in.Description = body.Description
	in.ImageURL = body.ImageURL
	in.DisplayOrder = body.DisplayOrder
	return in, true
}
