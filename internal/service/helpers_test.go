package service

import (
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/repo"
	"go-signage-cms/pkg/utils"
)

var (
	asAdmin = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
	asAlice = domain.Principal{ID: "alice-1", Role: domain.RoleUser}
	asBob   = domain.Principal{ID: "bob-1", Role: domain.RoleUser}
)

// 每个测试独享一个内存库，单连接串行化写入，与生产 sqlite 配置一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", utils.NewID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Slideshow{}, &domain.Slide{}, &domain.Setting{},
	))
	return db
}

// memFiles 内存版 storage.Provider，记录保存/删除动作
type memFiles struct {
	mu             sync.Mutex
	saved          map[string]bool
	deleted        []string
	removedFolders []string
}

func newMemFiles() *memFiles { return &memFiles{saved: map[string]bool{}} }

func (m *memFiles) SaveImage(folder string, fh *multipart.FileHeader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := path.Join("/uploads", folder, utils.NewID()+".png")
	m.saved[p] = true
	return p, nil
}

func (m *memFiles) Delete(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, p)
	m.deleted = append(m.deleted, p)
	return nil
}

func (m *memFiles) EnsureFolder(string) error { return nil }

func (m *memFiles) RemoveFolder(folder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removedFolders = append(m.removedFolders, folder)
	return nil
}

type env struct {
	db       *gorm.DB
	files    *memFiles
	slides   *repo.SlideRepo
	showRepo *repo.SlideshowRepo
	shows    *SlideshowService
	feed     *FeedService
	users    *UserService
	settings *SettingsService
	stats    *StatsService
	boot     *Bootstrap
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newTestDB(t)
	files := newMemFiles()
	log := zap.NewNop()
	showRepo := repo.NewSlideshowRepo(db)
	slideRepo := repo.NewSlideRepo(db)
	userRepo := repo.NewUserRepo(db)
	settingRepo := repo.NewSettingRepo(db)
	feed := NewFeedService(showRepo, slideRepo, nil, 0, log)
	return &env{
		db:       db,
		files:    files,
		slides:   slideRepo,
		showRepo: showRepo,
		shows:    NewSlideshowService(showRepo, slideRepo, files, feed, log),
		feed:     feed,
		users:    NewUserService(userRepo),
		settings: NewSettingsService(settingRepo, log),
		stats:    NewStatsService(db),
		boot:     NewBootstrap(userRepo, settingRepo, log),
	}
}

func fileHeader(name string) *multipart.FileHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", "image/png")
	return &multipart.FileHeader{Filename: name, Header: h}
}
