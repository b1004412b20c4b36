// Package render 提供模板渲染命令。
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/natefinch/atomic"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261017-go-temply/internal/command"
	"github.com/lwmacct/261017-go-temply/internal/config"
	"github.com/lwmacct/261017-go-temply/pkg/source"
	"github.com/lwmacct/261017-go-temply/pkg/tmpl"
)

// Command 渲染命令
var Command = New()

// New 创建渲染命令，每次调用返回独立实例
func New() *cli.Command {
	return &cli.Command{
		Name:      "temply",
		Usage:     "使用环境变量渲染模板",
		ArgsUsage: "[INPUT_FILE]",
		Description: "从 INPUT_FILE 或标准输入读取模板，合并进程环境变量、envdir 目录、\n" +
			"dotenv 文件与 JSON 文件中的变量 (后者覆盖前者) 后渲染。",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (yaml 或 json)",
			},
			&cli.BoolFlag{
				Name:  "allow-missing",
				Value: command.Defaults.AllowMissing,
				Usage: "允许引用未定义的变量, 替换为空字符串",
			},
			&cli.BoolFlag{
				Name:  "keep-template",
				Value: command.Defaults.KeepTemplate,
				Usage: "渲染完成后保留模板文件",
			},
			&cli.StringFlag{
				Name:  "envdir",
				Value: command.Defaults.Envdir,
				Usage: "从目录加载变量, 每个文件一个变量",
			},
			&cli.StringFlag{
				Name:  "dotenv",
				Value: command.Defaults.Dotenv,
				Usage: "从 dotenv 文件加载变量",
			},
			&cli.StringFlag{
				Name:  "json-file",
				Value: command.Defaults.JSONFile,
				Usage: "从 JSON 文件加载变量",
			},
			&cli.StringFlag{
				Name:    "output-file",
				Aliases: []string{"o"},
				Value:   command.Defaults.OutputFile,
				Usage:   "输出文件, 默认写入标准输出",
			},
		},
		Action:   action,
		Commands: []*cli.Command{version.Command},
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 1 {
		return fmt.Errorf("expected at most one INPUT_FILE, got %d arguments", cmd.NArg())
	}

	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	vars, err := source.Merge(cfg.Sources()...)
	if err != nil {
		return err
	}

	input := cmd.Args().First()
	loader := newLoader(cmd.Reader, input)

	out, err := tmpl.New(loader, tmpl.WithPolicy(cfg.Policy())).Render(vars)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.Writer, cfg.OutputFile, out); err != nil {
		return err
	}
	slog.Debug("Rendered template",
		"template", loader.Name(),
		"policy", cfg.Policy(),
		"variables", len(vars),
		"output", cfg.OutputFile,
	)

	if input != "" && !cfg.KeepTemplate {
		if err := os.Remove(input); err != nil {
			return fmt.Errorf("failed to remove template: %w", err)
		}
		slog.Debug("Removed template", "path", input)
	}

	return nil
}

// newLoader 有 INPUT_FILE 时从文件读取模板，否则从标准输入读取
func newLoader(stdin io.Reader, input string) tmpl.Loader {
	if input == "" {
		return tmpl.NewReaderLoader(stdin)
	}
	return tmpl.NewFileLoader(input)
}

// writeOutput 写入标准输出时追加换行；写入文件时原子替换，内容与渲染结果一致
func writeOutput(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}

	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}
