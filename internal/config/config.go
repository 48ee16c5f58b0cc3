package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config 运行配置
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Sample SampleConfig `mapstructure:"sample"`
	DB     DBConfig     `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SampleConfig 样本配置
type SampleConfig struct {
	DefaultCount int `mapstructure:"default_count"`
	Values       int `mapstructure:"values"`
}

// DBConfig 数据库来源配置
type DBConfig struct {
	Type    string        `mapstructure:"type"`
	Conn    string        `mapstructure:"conn"`
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// flagKeys 命令行参数与配置键的对应关系
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"type":       "db.type",
	"conn":       "db.conn",
	"limit":      "db.limit",
	"timeout":    "db.timeout",
}

// Load 依次合并默认值、配置文件、.env 与 SUMRY_ 环境变量、命令行参数
func Load(flags *pflag.FlagSet) (*Config, error) {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sumry"))
	}
	return load(flags, paths)
}

func load(flags *pflag.FlagSet, paths []string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("sumry")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	v.SetEnvPrefix("SUMRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.Sample.DefaultCount <= 0 {
		cfg.Sample.DefaultCount = 5
	}
	if cfg.Sample.Values <= 0 {
		cfg.Sample.Values = 3
	}
	if cfg.DB.Timeout <= 0 {
		cfg.DB.Timeout = 30 * time.Second
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("sample.default_count", 5)
	v.SetDefault("sample.values", 3)
	v.SetDefault("db.type", "mysql")
	v.SetDefault("db.conn", "")
	v.SetDefault("db.limit", 0)
	v.SetDefault("db.timeout", "30s")
}
