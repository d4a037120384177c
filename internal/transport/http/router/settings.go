package router

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-signage-cms/internal/storage"
	"go-signage-cms/internal/transport/http/ez"
)

func mountSettingsRead(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)

	e.GET("/settings", func(c *gin.Context) (any, error) {
		return d.Settings.All(c)
	})
}

func mountSettingsWrite(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)

	// 逐 key 写入，部分失败不回滚已写入的 key
	ez.RegisterAction(e, d.DB, ez.Action[map[string]string, map[string]string]{
		Method: "PUT", Path: "/settings", Binder: ez.BindJSON, Auth: true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *map[string]string) (map[string]string, error) {
			if err := d.Settings.SetMany(c, *in); err != nil {
				return nil, err
			}
			return d.Settings.All(c)
		},
	})

	ez.POSTFILES(e, "/settings/logo", "logo", func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
		if len(files) == 0 {
			return nil, ez.BadRequest("logo file is required")
		}
		path, err := d.Files.SaveImage(storage.LogoFolder, files[0])
		if err != nil {
			return nil, err
		}
		if err := d.Settings.SetLogo(c, path); err != nil {
			return nil, err
		}
		return gin.H{"company_logo": path}, nil
	})
}
