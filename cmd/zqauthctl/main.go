// zqauthctl 是 ZqAuth 认证服务的命令行客户端。
//
// 用法:
//
//	zqauthctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-k, --app-key      app 标识 APP_KEY_ID（或环境变量 ZQAUTH_APP_KEY）
//	-s, --app-secret   app 密钥 APP_KEY_SECRET（或环境变量 ZQAUTH_APP_SECRET）
//	-u, --base-url     认证服务地址 (默认: https://api.cas.ziqiang.net.cn)
//	-t, --timeout      请求超时时间 (默认: 30s)
//	-r, --redis        Redis 地址，指定后 token 缓存在 Redis 中跨调用复用
//	-v, --verbose      输出调试日志
//
// 命令:
//
//	ping                    连通性测试，回显认证账号与服务端时间
//	app-info                查看当前 app 信息
//	sso <code>              用 sso 临时 code 换取用户 union id
//	user-info <union-id>    按 union id 查询用户信息
//	token                   换取并打印 access token
//	help                    显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（凭据错误、网络错误、资源不存在等）
//	2: 参数错误（缺少凭据、缺少必需参数、未知命令等）
//
// 示例:
//
//	export ZQAUTH_APP_KEY=xxx ZQAUTH_APP_SECRET=yyy
//	zqauthctl ping
//	zqauthctl sso 0a1b2c3d
//	zqauthctl user-info 678574dd4a274d3cbfac10666b7613ef --no-detail
//	zqauthctl -r localhost:6379 token    # token 缓存在 Redis，下次调用直接复用
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认请求超时时间。
const defaultTimeout = 30 * time.Second

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "zqauthctl",
		Usage:   "ZqAuth 认证服务命令行客户端",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "app-key",
				Aliases: []string{"k"},
				Usage:   "app 标识 APP_KEY_ID",
				Sources: cli.EnvVars("ZQAUTH_APP_KEY"),
			},
			&cli.StringFlag{
				Name:    "app-secret",
				Aliases: []string{"s"},
				Usage:   "app 密钥 APP_KEY_SECRET",
				Sources: cli.EnvVars("ZQAUTH_APP_SECRET"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Aliases: []string{"u"},
				Usage:   "认证服务地址",
				Sources: cli.EnvVars("ZQAUTH_BASE_URL"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "请求超时时间",
				Value:   defaultTimeout,
			},
			&cli.StringFlag{
				Name:    "redis",
				Aliases: []string{"r"},
				Usage:   "Redis 地址，token 缓存在 Redis 中跨调用复用",
				Sources: cli.EnvVars("ZQAUTH_REDIS_ADDR"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "输出调试日志",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"自强 Studio",
		},
		// 禁止 urfave/cli 直接 os.Exit，由 run() 统一映射退出码
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := app.Run(ctx, os.Args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if _, ok := err.(cli.ExitCoder); ok {
			// ExitErrHandler 已输出错误详情
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
