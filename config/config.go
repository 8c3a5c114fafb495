package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 PDFSPLIT_OUTPUT
const EnvPrefix = "PDFSPLIT"

// ErrMissingInput 未指定输入文件
var ErrMissingInput = errors.New("input file is required")

// Config 应用程序配置结构体
type Config struct {
	Input     string    `mapstructure:"input" validate:"required"`        // 输入PDF路径
	Output    string    `mapstructure:"output" validate:"required"`       // 输出目录
	Workers   int       `mapstructure:"workers" validate:"min=1,max=256"` // 并发处理页面数
	Clean     bool      `mapstructure:"clean"`                            // 写入前清理旧的页面文件
	KeepGoing bool      `mapstructure:"keep_going"`                       // 单页失败后继续
	PDF       PDFConfig `mapstructure:"pdf"`                              // PDF读取配置
	Log       LogConfig `mapstructure:"log"`                              // 日志配置
}

// PDFConfig PDF读取配置
type PDFConfig struct {
	Strict   bool   `mapstructure:"strict"`   // 严格校验模式
	Password string `mapstructure:"password"` // 加密文档密码
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"` // 日志级别
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json"`                    // 输出格式
	File       string `mapstructure:"file"`                                                           // 日志文件，为空时输出到标准错误
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=0"`                                   // 单个日志文件最大尺寸
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`                                   // 保留的旧日志文件数
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`                                  // 旧日志保留天数
}

// flagKeys 命令行参数名到配置键的映射
var flagKeys = map[string]string{
	"input":      "input",
	"output":     "output",
	"workers":    "workers",
	"clean":      "clean",
	"keep-going": "keep_going",
	"strict":     "pdf.strict",
	"password":   "pdf.password",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
}

// RegisterFlags 注册命令行参数
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "Path to the input PDF file to be split (e.g. /path/to/document.pdf)")
	fs.StringP("output", "o", "output_pages", "Directory where the split pages will be saved")
	fs.StringP("config", "c", "", "Path to config file (yaml/json/toml)")
	fs.IntP("workers", "w", 1, "Number of pages processed concurrently")
	fs.Bool("clean", false, "Remove existing page_*.pdf files from the output directory before writing")
	fs.Bool("keep-going", false, "Continue with the remaining pages when a page cannot be saved")
	fs.Bool("strict", false, "Use strict PDF validation")
	fs.String("password", "", "Password for encrypted input files")
	fs.String("log-level", "warn", "Log level (debug/info/warn/error)")
	fs.String("log-format", "text", "Log format (text/json)")
	fs.String("log-file", "", "Write logs to this file with rotation instead of stderr")
}

// LoadDotEnv 加载.env文件中的环境变量，文件不存在时忽略
// 已存在的环境变量不会被覆盖
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load 从配置文件、环境变量和命令行参数加载配置
// 优先级: 命令行参数 > 环境变量 > 配置文件 > 默认值
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 支持环境变量覆盖
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Input) == "" {
		return fmt.Errorf("invalid configuration: %w", ErrMissingInput)
	}
	if err := validator.New().Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("output", "output_pages")
	v.SetDefault("workers", 1)
	v.SetDefault("clean", false)
	v.SetDefault("keep_going", false)

	// PDF默认配置
	v.SetDefault("pdf.strict", false)
	v.SetDefault("pdf.password", "")

	// 日志默认配置
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
