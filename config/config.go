package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chaos-io/bgcut/segment"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Process ProcessConfig `mapstructure:"process"`
	Output  OutputConfig  `mapstructure:"output"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxConcurrent 同时处理的图片数量
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"`
}

type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"`
	// MaxPixels 解码前按头部尺寸限制宽×高，0 表示不限制
	MaxPixels    int64    `mapstructure:"max_pixels"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// ProcessConfig 默认处理参数，请求里的参数会覆盖
type ProcessConfig struct {
	Mode              string  `mapstructure:"mode"`
	ColorTolerance    float64 `mapstructure:"color_tolerance"`
	EdgeSensitivity   float64 `mapstructure:"edge_sensitivity"`
	FeatherRadius     int     `mapstructure:"feather_radius"`
	EdgeChannel       string  `mapstructure:"edge_channel"`
	Workers           int     `mapstructure:"workers"`
	MaxSize           int     `mapstructure:"max_size"`
	KeepExistingAlpha bool    `mapstructure:"keep_existing_alpha"`
}

type OutputConfig struct {
	Dir       string        `mapstructure:"dir"`
	Retention time.Duration `mapstructure:"retention"`
	// CleanupSpec cron 表达式，为空时不清理
	CleanupSpec string `mapstructure:"cleanup_spec"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Settings 转换为分割参数
func (p ProcessConfig) Settings() (segment.Settings, error) {
	mode, err := segment.ParseMode(p.Mode)
	if err != nil {
		return segment.Settings{}, err
	}
	channel, ok := segment.ParseEdgeChannel(p.EdgeChannel)
	if !ok {
		return segment.Settings{}, fmt.Errorf("unknown edge channel %q", p.EdgeChannel)
	}

	return segment.Settings{
		Mode:            mode,
		ColorTolerance:  p.ColorTolerance,
		EdgeSensitivity: p.EdgeSensitivity,
		FeatherRadius:   p.FeatherRadius,
		EdgeChannel:     channel,
		Workers:         p.Workers,
	}, nil
}

// Load 从 YAML 文件加载配置，环境变量 BGCUT_* 优先
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("bgcut")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 加载配置，文件不存在时返回默认配置
func New(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return nil, err
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_concurrent", d.Server.MaxConcurrent)
	v.SetDefault("server.queue_timeout", d.Server.QueueTimeout)

	v.SetDefault("upload.max_size", d.Upload.MaxSize)
	v.SetDefault("upload.max_pixels", d.Upload.MaxPixels)
	v.SetDefault("upload.allowed_types", d.Upload.AllowedTypes)

	v.SetDefault("process.mode", d.Process.Mode)
	v.SetDefault("process.color_tolerance", d.Process.ColorTolerance)
	v.SetDefault("process.edge_sensitivity", d.Process.EdgeSensitivity)
	v.SetDefault("process.feather_radius", d.Process.FeatherRadius)
	v.SetDefault("process.edge_channel", d.Process.EdgeChannel)
	v.SetDefault("process.workers", d.Process.Workers)
	v.SetDefault("process.max_size", d.Process.MaxSize)
	v.SetDefault("process.keep_existing_alpha", d.Process.KeepExistingAlpha)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.retention", d.Output.Retention)
	v.SetDefault("output.cleanup_spec", d.Output.CleanupSpec)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)
}

func Default() *Config {
	s := segment.DefaultSettings()
	return &Config{
		Server: ServerConfig{
			Port:          ":8080",
			Mode:          "debug",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  60 * time.Second,
			MaxConcurrent: 4,
			QueueTimeout:  30 * time.Second,
		},
		Upload: UploadConfig{
			MaxSize:      20 * 1024 * 1024,
			MaxPixels:    64 * 1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/jpg", "image/gif", "image/bmp", "image/tiff", "image/webp"},
		},
		Process: ProcessConfig{
			Mode:              s.Mode.String(),
			ColorTolerance:    s.ColorTolerance,
			EdgeSensitivity:   s.EdgeSensitivity,
			FeatherRadius:     s.FeatherRadius,
			EdgeChannel:       s.EdgeChannel.String(),
			MaxSize:           2048,
			KeepExistingAlpha: false,
		},
		Output: OutputConfig{
			Dir:         "./output",
			Retention:   24 * time.Hour,
			CleanupSpec: "@every 1h",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			TTL:     24 * time.Hour,
		},
	}
}
