package ez

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-signage-cms/internal/domain"
	resp "go-signage-cms/internal/transport/http/response"
)

/* ================== 轻封装 ================== */

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

func (e EZ) GET(path string, h func(c *gin.Context) (any, error)) {
	e.g.GET(path, func(c *gin.Context) {
		data, err := h(c)
		if err != nil {
			WriteErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(data))
	})
}

func POST[T any](e EZ, path string, h func(c *gin.Context, in T) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
			return
		}
		data, err := h(c, in)
		if err != nil {
			WriteErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(data))
	})
}

// POSTFILES 处理 multipart/form-data 上传（可混合普通表单字段）
func POSTFILES(e EZ, path string, fieldName string, h func(c *gin.Context, files []*multipart.FileHeader) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "invalid multipart form: "+err.Error()))
			return
		}
		data, err := h(c, form.File[fieldName])
		if err != nil {
			WriteErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(data))
	})
}

/* ================== Action（非 CRUD 一行注册） ================== */

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // 自己从 c.Param / c.PostForm 取
)

// AErr 处理器本地错误（服务层的错误走 domain.Error）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path    string
	Binder  Binder
	Auth    bool     // 是否要求已登录（检查 userId）
	Roles   []string // 限定角色（可选）
	UseTx   bool     // 是否包事务
	Handler func(c *gin.Context, db *gorm.DB, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, db *gorm.DB, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			uid := c.GetString("userId")
			if uid == "" {
				c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 {
				role := c.GetString("role")
				ok := false
				for _, r := range a.Roles {
					if role == r {
						ok = true
						break
					}
				}
				if !ok {
					c.JSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
					return
				}
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		// 3) 执行（可选事务）
		run := func(tx *gorm.DB) (O, error) { return a.Handler(c, tx, &in) }
		var out O
		var err error
		if a.UseTx {
			err = db.WithContext(c).Transaction(func(tx *gorm.DB) error {
				o, e := run(tx)
				out = o
				return e
			})
		} else {
			out, err = run(db.WithContext(c))
		}

		// 4) 统一错误映射
		if err != nil {
			WriteErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// WriteErr AErr / domain.Error 统一映射为响应码；其他一律 500
func WriteErr(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		c.JSON(httpStatus(ae.Code), resp.Error(ae.Code, ae.Error()))
		return
	}
	code := resp.CodeServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		code = resp.CodeBadRequest
	case domain.KindAuth:
		code = resp.CodeUnauthorized
	case domain.KindForbidden:
		code = resp.CodeForbidden
	case domain.KindNotFound:
		code = resp.CodeNotFound
	case domain.KindConflict:
		code = resp.CodeConflict
	}
	c.JSON(httpStatus(code), resp.Error(code, err.Error()))
}

func httpStatus(code int) int {
	if code >= 400 && code < 600 {
		return code
	}
	return http.StatusOK
}
