package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
}

var ErrUnsupportedDriver = gorm.ErrInvalidDB

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "sqlite", "":
		// 默认本地单文件库；目录不存在则先建
		if dir := filepath.Dir(o.DSN); dir != "." && dir != "" && !strings.HasPrefix(o.DSN, "file:") {
			_ = os.MkdirAll(dir, 0o755)
		}
		dial = sqlite.Open(o.DSN)
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dial = mysql.Open(mysqlDSN(o.DSN, o.Username, o.Password))
	default:
		return nil, ErrUnsupportedDriver
	}

	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(lvl),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := o.MaxOpenConns
	if o.Driver == "sqlite" || o.Driver == "" {
		maxOpen = 1 // sqlite 写并发靠单连接串行化
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	db = db.Session(&gorm.Session{
		PrepareStmt:            true, // 预编译缓存
		SkipDefaultTransaction: true, // 只在需要时手动开 Tx
	})
	return db, nil
}

// mysqlDSN 在 user:pass@tcp(...) 形式缺账号时注入配置里的账号
func mysqlDSN(dsn, user, pass string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || strings.Contains(dsn, "@") {
		return dsn
	}
	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	if cred == "" {
		return dsn
	}
	if !strings.Contains(dsn, "parseTime") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true&charset=utf8mb4"
	}
	return fmt.Sprintf("%s@%s", cred, dsn)
}
