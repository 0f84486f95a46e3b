package config

import (
	"strings"

	"github.com/spf13/viper"
)

// AppName 会作为WWGF导出文件info块中的export_app写出。
const AppName = "waves-gacha-backend"

// AppVersion 是当前应用版本，随导出文件一同写出。
const AppVersion = "0.3.1"

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Gacha    GachaConfig    `mapstructure:"gacha"`
	Kuro     KuroConfig     `mapstructure:"kuro"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// GachaConfig 定义了抽卡记录持久化相关的配置
type GachaConfig struct {
	// DataDir 是按玩家存放WWGF导出文件的目录
	DataDir string `mapstructure:"dataDir"`
}

// KuroConfig 定义了上游（库洛）接口相关的配置
type KuroConfig struct {
	// GachaURL 是国服抽卡记录接口
	GachaURL string `mapstructure:"gachaUrl"`
	// IntlGachaURL 是国际服抽卡记录接口
	IntlGachaURL string `mapstructure:"intlGachaUrl"`
	// WikiURL 是库街区Wiki词条查询接口，用于解析物品图标
	WikiURL string `mapstructure:"wikiUrl"`
	// WikiFallbackURL 是Wiki词条网页地址，接口查不到时退化为抓取页面
	WikiFallbackURL string `mapstructure:"wikiFallbackUrl"`
	// TimeoutSeconds 是上游请求超时
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 缺省值，保证没有配置文件也能以默认参数启动
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.sqlite.path", "gacha.db")
	v.SetDefault("gacha.dataDir", "data/GachaData")
	v.SetDefault("kuro.gachaUrl", "https://gmserver-api.aki-game2.com/gacha/record/query")
	v.SetDefault("kuro.intlGachaUrl", "https://gmserver-api.aki-game2.net/gacha/record/query")
	v.SetDefault("kuro.wikiUrl", "https://api.kurobbs.com/wiki/core/catalogue/item/getPage")
	v.SetDefault("kuro.wikiFallbackUrl", "https://wiki.kurobbs.com/mc/item")
	v.SetDefault("kuro.timeoutSeconds", 15)

	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时按缺省值启动，其余读取错误仍然上抛
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}
