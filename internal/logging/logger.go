package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 常用日志字段
const (
	FieldRunID  = "run_id" // 单次运行ID
	FieldInput  = "input"  // 输入文件
	FieldOutput = "output" // 输出目录或文件
	FieldPage   = "page"   // 页码
	FieldTotal  = "total"  // 总页数
	FieldState  = "state"  // 运行状态
	FieldError  = "error"  // 错误信息
)

// Config 日志配置
type Config struct {
	Level      string // 日志级别 debug/info/warn/error
	Format     string // 输出格式 text/json
	File       string // 日志文件路径，为空时输出到Output
	MaxSizeMB  int    // 单个日志文件最大尺寸(MB)
	MaxBackups int    // 保留的旧日志文件数量
	MaxAgeDays int    // 旧日志文件保留天数
	Output     io.Writer
}

// New 根据配置创建日志记录器
func New(cfg Config) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	// 设置输出位置
	switch {
	case cfg.File != "":
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		})
	case cfg.Output != nil:
		logger.SetOutput(cfg.Output)
	default:
		logger.SetOutput(os.Stderr)
	}

	return logger, nil
}

// ParseLevel 解析日志级别，空字符串视为warn
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return logrus.WarnLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.WarnLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Discard 返回丢弃所有输出的日志记录器
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
