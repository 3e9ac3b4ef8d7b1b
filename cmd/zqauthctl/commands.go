package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/ziqiangstudio/zqauth-go/pkg/sessionstore"
	"github.com/ziqiangstudio/zqauth-go/pkg/zqauth"
)

// usageError 表示参数错误，run() 将其映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createPingCommand(),
		createAppInfoCommand(),
		createSSOCommand(),
		createUserInfoCommand(),
		createTokenCommand(),
	}
}

// newClient 根据全局 flag 构建 zqauth 客户端。
func newClient(ctx context.Context, cmd *cli.Command) (*zqauth.Client, error) {
	appKey := cmd.String("app-key")
	appSecret := cmd.String("app-secret")
	if appKey == "" || appSecret == "" {
		return nil, &usageError{msg: "缺少 app 凭据，请设置 --app-key/--app-secret 或对应环境变量"}
	}

	logLevel := slog.LevelWarn
	if cmd.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	opts := []zqauth.Option{zqauth.WithLogger(logger)}
	if addr := cmd.String("redis"); addr != "" {
		store, err := sessionstore.NewRedis(redis.NewClient(&redis.Options{Addr: addr}))
		if err != nil {
			return nil, err
		}
		opts = append(opts, zqauth.WithStorage(store))
	}

	return zqauth.NewClient(ctx, &zqauth.Config{
		AppID:   appKey,
		Secret:  appSecret,
		BaseURL: cmd.String("base-url"),
		Timeout: cmd.Duration("timeout"),
	}, opts...)
}

// printJSON 以缩进 JSON 输出结果。
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// createPingCommand 创建 ping 子命令。
func createPingCommand() *cli.Command {
	return &cli.Command{
		Name:    "ping",
		Aliases: []string{"test"},
		Usage:   "连通性测试，回显认证账号与服务端时间",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			result, err := client.App.Test(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, result)
		},
	}
}

// createAppInfoCommand 创建 app-info 子命令。
func createAppInfoCommand() *cli.Command {
	return &cli.Command{
		Name:    "app-info",
		Aliases: []string{"info"},
		Usage:   "查看当前 app 信息",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			result, err := client.App.Info(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, result)
		},
	}
}

// createSSOCommand 创建 sso 子命令。
func createSSOCommand() *cli.Command {
	return &cli.Command{
		Name:      "sso",
		Usage:     "用 sso 临时 code 换取用户 union id",
		ArgsUsage: "<code>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			code := cmd.Args().First()
			if code == "" {
				return &usageError{msg: "缺少 sso 临时 code"}
			}

			client, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			unionID, err := client.App.SSO(ctx, code)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, unionID)
			return nil
		},
	}
}

// createUserInfoCommand 创建 user-info 子命令。
func createUserInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "user-info",
		Aliases:   []string{"user"},
		Usage:     "按 union id 查询用户信息",
		ArgsUsage: "<union-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-detail",
				Usage: "只返回认证时间",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			arg := cmd.Args().First()
			if arg == "" {
				return &usageError{msg: "缺少 union id"}
			}
			unionID, err := uuid.Parse(arg)
			if err != nil {
				return &usageError{msg: fmt.Sprintf("无效的 union id %q: %v", arg, err)}
			}

			client, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			result, err := client.App.UserInfo(ctx, unionID, !cmd.Bool("no-detail"))
			if err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, result)
		},
	}
}

// createTokenCommand 创建 token 子命令。
func createTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "换取并打印 access token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "强制刷新，忽略已缓存的 token",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			if cmd.Bool("refresh") {
				if err := client.RefreshAccessToken(ctx); err != nil {
					return err
				}
			}
			token, err := client.AccessToken(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, token)
			return nil
		},
	}
}
