package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/service"
	"go-signage-cms/internal/transport/http/ez"
	mdw "go-signage-cms/internal/transport/http/middleware"
)

type updateRoleInput struct {
	Role string `json:"role" binding:"required"`
}

type updateStatusInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type resetPasswordInput struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

// mountUsers 管理面用户管理，整组挂在 admin 角色后面
func mountUsers(g *gin.RouterGroup, d Deps) {
	e := ez.New(g)
	adminOnly := []string{domain.RoleAdmin}

	e.GET("/users", func(c *gin.Context) (any, error) {
		return d.Users.List(c)
	})

	ez.POST(e, "/users", func(c *gin.Context, in service.CreateUserInput) (any, error) {
		return d.Users.Create(c, in)
	})

	ez.RegisterAction(e, d.DB, ez.Action[updateRoleInput, *domain.User]{
		Method: "PATCH", Path: "/users/:id/role", Binder: ez.BindJSON, Auth: true, Roles: adminOnly,
		Handler: func(c *gin.Context, _ *gorm.DB, in *updateRoleInput) (*domain.User, error) {
			return d.Users.UpdateRole(c, mdw.PrincipalFrom(c), c.Param("id"), in.Role)
		},
	})

	ez.RegisterAction(e, d.DB, ez.Action[updateStatusInput, *domain.User]{
		Method: "PATCH", Path: "/users/:id/status", Binder: ez.BindJSON, Auth: true, Roles: adminOnly,
		Handler: func(c *gin.Context, _ *gorm.DB, in *updateStatusInput) (*domain.User, error) {
			return d.Users.UpdateStatus(c, mdw.PrincipalFrom(c), c.Param("id"), *in.IsActive)
		},
	})

	ez.RegisterAction(e, d.DB, ez.Action[resetPasswordInput, gin.H]{
		Method: "PUT", Path: "/users/:id/password", Binder: ez.BindJSON, Auth: true, Roles: adminOnly,
		Handler: func(c *gin.Context, _ *gorm.DB, in *resetPasswordInput) (gin.H, error) {
			if err := d.Users.ChangePassword(c, mdw.PrincipalFrom(c), c.Param("id"), "", in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"updated": true}, nil
		},
	})

	ez.RegisterAction(e, d.DB, ez.Action[struct{}, gin.H]{
		Method: "DELETE", Path: "/users/:id", Binder: ez.BindNone, Auth: true, Roles: adminOnly,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			if err := d.Users.Delete(c, mdw.PrincipalFrom(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"deleted": true}, nil
		},
	})
}
