package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 非空则同时写文件并按下列参数切割
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr       string `mapstructure:"addr"` // 空则不启用缓存
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	FeedTTLSec int    `mapstructure:"feed_ttl_sec"`
}

type DB struct {
	Driver             string // sqlite / mysql / postgres
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Upload struct {
	Dir           string // 上传根目录
	MaxSizeMB     int    // 单文件上限
	AllowSVG      bool
	PublicBaseURL string // 返回给前端的路径前缀
}

type Bootstrap struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Upload    Upload
	Bootstrap Bootstrap
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 缺省值（缺 key 不报错，按默认跑）
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "./data/signage.db")
	v.SetDefault("db.automigrate", true)
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.maxsizemb", 10)
	v.SetDefault("upload.publicbaseurl", "/uploads")
	v.SetDefault("redis.feed_ttl_sec", 5)
	v.SetDefault("bootstrap.adminemail", "admin@signage.local")
	v.SetDefault("bootstrap.adminpassword", "admin123")
	v.SetDefault("bootstrap.adminname", "Administrator")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
