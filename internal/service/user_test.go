package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-signage-cms/internal/domain"
)

func mustCreateUser(t *testing.T, e *env, email, role string) *domain.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), CreateUserInput{
		Email:    email,
		Password: "supersecret",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mustCreateUser(t, e, "alice@example.com", domain.RoleUser)

	// 邮箱大小写不敏感
	u, err := e.users.Login(ctx, "Alice@Example.COM", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = e.users.Login(ctx, "alice@example.com", "wrong")
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))

	// 不存在的账号和密码错给同一个错，不让人探出邮箱
	_, err2 := e.users.Login(ctx, "nobody@example.com", "whatever")
	assert.Equal(t, domain.KindAuth, domain.KindOf(err2))
	assert.Equal(t, err.Error(), err2.Error())
}

func TestLoginDisabledAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := mustCreateUser(t, e, "off@example.com", domain.RoleUser)

	_, err := e.users.UpdateStatus(ctx, asAdmin, u.ID, false)
	require.NoError(t, err)

	_, err = e.users.Login(ctx, "off@example.com", "supersecret")
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
}

func TestCreateUserValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.users.Create(ctx, CreateUserInput{Email: "x@example.com", Password: "short"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = e.users.Create(ctx, CreateUserInput{Email: "x@example.com", Password: "supersecret", Role: "root"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	mustCreateUser(t, e, "dup@example.com", domain.RoleUser)
	_, err = e.users.Create(ctx, CreateUserInput{Email: "DUP@example.com", Password: "supersecret"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestDeleteUserFreesEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u := mustCreateUser(t, e, "rehire@example.com", domain.RoleUser)
	require.NoError(t, e.users.Delete(ctx, asAdmin, u.ID))

	// 删号后同一邮箱可以重新注册
	again := mustCreateUser(t, e, "rehire@example.com", domain.RoleUser)
	assert.NotEqual(t, u.ID, again.ID)
}

func TestSelfModificationGuards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := mustCreateUser(t, e, "root@example.com", domain.RoleAdmin)
	p := domain.Principal{ID: admin.ID, Role: admin.Role}
	other := mustCreateUser(t, e, "other@example.com", domain.RoleUser)

	_, err := e.users.UpdateRole(ctx, p, admin.ID, domain.RoleUser)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = e.users.UpdateStatus(ctx, p, admin.ID, false)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	err = e.users.Delete(ctx, p, admin.ID)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// 对别人没限制
	got, err := e.users.UpdateRole(ctx, p, other.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	require.NoError(t, e.users.Delete(ctx, p, other.ID))
	err = e.users.Delete(ctx, p, other.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u := mustCreateUser(t, e, "me@example.com", domain.RoleUser)
	me := domain.Principal{ID: u.ID, Role: u.Role}
	other := mustCreateUser(t, e, "you@example.com", domain.RoleUser)

	// 旧密码错不给改
	err := e.users.ChangePassword(ctx, me, u.ID, "wrong", "newpassword1")
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))

	require.NoError(t, e.users.ChangePassword(ctx, me, u.ID, "supersecret", "newpassword1"))
	_, err = e.users.Login(ctx, "me@example.com", "newpassword1")
	require.NoError(t, err)

	// 普通用户改不了别人的
	err = e.users.ChangePassword(ctx, me, other.ID, "supersecret", "newpassword1")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// 管理员重置不需要旧密码
	require.NoError(t, e.users.ChangePassword(ctx, asAdmin, other.ID, "", "resetpassword"))
	_, err = e.users.Login(ctx, "you@example.com", "resetpassword")
	require.NoError(t, err)

	err = e.users.ChangePassword(ctx, asAdmin, other.ID, "", "short")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestBootstrapIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.boot.Run(ctx, "admin@signage.local", "admin123", "Administrator"))
	require.NoError(t, e.boot.Run(ctx, "admin@signage.local", "admin123", "Administrator"))

	users, err := e.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)

	// 播种后默认设置就位
	got, err := e.settings.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings["font_family"], got["font_family"])

	// 已有用户的库不再补管理员
	e2 := newEnv(t)
	mustCreateUser(t, e2, "existing@example.com", domain.RoleUser)
	require.NoError(t, e2.boot.Run(ctx, "admin@signage.local", "admin123", "Administrator"))
	users2, err := e2.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users2, 1)
}
