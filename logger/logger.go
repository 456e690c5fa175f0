package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"adaptive_coach/config"
)

// Logger 全局日志记录器，未初始化时回落到 slog.Default()
var Logger *slog.Logger

// InitSlog 初始化slog日志系统
func InitSlog(cfg *config.Config) error {
	filePath := cfg.Log.FilePath

	// 创建日志目录
	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return err
		}
	}

	// 设置输出目标
	var writer io.Writer
	switch strings.ToLower(cfg.Log.Output) {
	case "file":
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writer = file
	case "both":
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writer = io.MultiWriter(os.Stdout, file)
	default:
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	// 设置默认logger和全局Logger变量
	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	return nil
}

// Init 使用配置文件初始化日志系统
func Init(cfg *config.Config) error {
	return InitSlog(cfg)
}

// InitDiscard 丢弃所有日志输出，测试使用
func InitDiscard() {
	Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	if Logger == nil {
		return slog.Default()
	}
	return Logger
}

// With 返回携带固定字段的子logger
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Debug 记录调试级别的日志
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info 记录信息级别的日志
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn 记录警告级别的日志
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error 记录错误级别的日志
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}
