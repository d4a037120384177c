package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-signage-cms/internal/transport/http/ez"
	mdw "go-signage-cms/internal/transport/http/middleware"
)

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func mountAuth(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)

	ez.POST(e, "/auth/login", func(c *gin.Context, in loginInput) (any, error) {
		u, err := d.Users.Login(c, in.Email, in.Password)
		if err != nil {
			return nil, err
		}
		token, err := d.JWT.Issue(u.ID, u.Role)
		if err != nil {
			return nil, ez.Internal("issue token failed", err)
		}
		return gin.H{"token": token, "user": u}, nil
	})
}

func mountMe(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)

	e.GET("/me", func(c *gin.Context) (any, error) {
		return d.Users.Me(c, mdw.PrincipalFrom(c))
	})

	ez.RegisterAction(e, d.DB, ez.Action[changePasswordInput, gin.H]{
		Method: "PUT", Path: "/me/password", Binder: ez.BindJSON, Auth: true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *changePasswordInput) (gin.H, error) {
			p := mdw.PrincipalFrom(c)
			if err := d.Users.ChangePassword(c, p, p.ID, in.CurrentPassword, in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"updated": true}, nil
		},
	})
}
