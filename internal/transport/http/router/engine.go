package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-signage-cms/internal/core/auth"
	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/service"
	"go-signage-cms/internal/storage"
	mdw "go-signage-cms/internal/transport/http/middleware"
)

type Deps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	JWT      *auth.JWTer
	Users    *service.UserService
	Shows    *service.SlideshowService
	Feed     *service.FeedService
	Settings *service.SettingsService
	Stats    *service.StatsService
	Files    storage.Provider

	UploadDir     string // 磁盘目录
	UploadBaseURL string // 静态托管前缀
	MaxBodyMB     int
}

func NewEngine(d Deps) *gin.Engine {
	r := gin.New()

	maxBody := int64(d.MaxBodyMB)
	if maxBody <= 0 {
		maxBody = 16
	}
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(maxBody<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		cors.Default(),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 上传文件静态托管（大屏直接引用）
	if d.UploadDir != "" {
		r.Static(d.UploadBaseURL, d.UploadDir)
	}

	api := r.Group("/api/v1")

	// 公共面：登录 + 大屏读路径（无鉴权）。登录口子按 IP 限速挡爆破
	mountAuth(api.Group("", mdw.RateLimitPerIP(5, 10)), d)
	mountDisplay(api, d)

	// 登录面
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, ""))
	mountMe(authed, d)
	mountSlideshows(authed, d)
	mountSettingsRead(authed, d)
	mountStats(authed, d)

	// 管理面（admin 角色）
	admin := api.Group("")
	admin.Use(mdw.AuthJWT(d.JWT, domain.RoleAdmin))
	mountUsers(admin, d)
	mountSettingsWrite(admin, d)

	return r
}
