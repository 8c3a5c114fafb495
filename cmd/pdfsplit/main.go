package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/fyerfyer/pdf-splitter/config"
	"github.com/fyerfyer/pdf-splitter/internal/logging"
	"github.com/fyerfyer/pdf-splitter/internal/pdf"
	"github.com/fyerfyer/pdf-splitter/internal/splitter"
)

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

const inputHint = "Please provide a valid PDF file path (for example: /path/to/document.pdf) using the `--input` / `-i` argument."

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 执行命令并返回退出码
func run(args []string, stdout, stderr io.Writer) int {
	// 解析命令行参数
	fs := pflag.NewFlagSet("pdfsplit", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	showVersion := fs.BoolP("version", "V", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return 1
	}
	if *showVersion {
		fmt.Fprintf(stdout, "pdfsplit %s\n", version)
		return 0
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}

	// 加载配置
	configPath, _ := fs.GetString("config")
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrMissingInput) {
			fmt.Fprintln(stderr, inputHint)
		}
		return 1
	}

	// 初始化日志
	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Output:     stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := splitter.New(splitter.Options{
		InputPath: cfg.Input,
		OutputDir: cfg.Output,
		Workers:   cfg.Workers,
		Clean:     cfg.Clean,
		KeepGoing: cfg.KeepGoing,
		PDF: pdf.Options{
			Strict:   cfg.PDF.Strict,
			Password: cfg.PDF.Password,
		},
	},
		splitter.WithLogger(logger),
		splitter.WithProgress(splitter.NewConsolePrinter(stdout)),
	)

	result, err := s.Split(ctx)
	if err != nil {
		reportError(stderr, cfg.Input, result, err)
		return 1
	}
	return 0
}

// reportError 向标准错误输出一行诊断信息
func reportError(w io.Writer, input string, result *splitter.Result, err error) {
	switch {
	case errors.Is(err, splitter.ErrInputNotFound):
		fmt.Fprintf(w, "Error: PDF file not found at '%s'\n", input)
		fmt.Fprintln(w, inputHint)
	case result != nil && len(result.Failed) > 0:
		fmt.Fprintf(w, "Error: %d of %d pages could not be saved\n", len(result.Failed), result.Pages)
		for _, f := range result.Failed {
			fmt.Fprintf(w, "  %v\n", f)
		}
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "Error: interrupted")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
