// Package zqauth 提供自强 Studio 统一认证服务（ZqAuth）的 Go 客户端。
//
// 客户端用 app 凭据（APP_KEY_ID / APP_KEY_SECRET）登录认证服务，
// 自动维护 access token 的缓存与刷新，并封装业务端点：
//
//	client, err := zqauth.NewClient(ctx, &zqauth.Config{
//		AppID:  os.Getenv("ZQAUTH_APP_KEY"),
//		Secret: os.Getenv("ZQAUTH_APP_SECRET"),
//	})
//	if err != nil {
//		// 凭据错误在构造阶段即返回 ErrAppLoginFailed
//	}
//
//	unionID, err := client.App.SSO(ctx, code)
//	user, err := client.App.UserInfo(ctx, unionID, true)
//
// # Token 生命周期
//
// access token 与登录身份缓存在 sessionstore.Store 中，按
// "{appid}_{field}" 隔离，多个 app 可共享同一存储。读取 access
// token 时距过期不足 60 秒会同步触发刷新：优先用 refresh token
// 换取新 token，refresh token 缺失或失效时回落到凭据登录。
// 请求返回 token 失效（A0221）时自动刷新并重试一次，之后不再重试。
//
// 所有刷新都在请求路径上同步完成，客户端不启动后台 goroutine。
// 并发场景下重复刷新是被容忍的：多换一次 token 不影响正确性。
//
// # 错误处理
//
// 非成功响应以 *ClientError 返回，携带 envelope code 与原始
// 请求/响应。领域场景用哨兵错误判别：
//
//	errors.Is(err, zqauth.ErrAppLoginFailed)   // 凭据被拒绝
//	errors.Is(err, zqauth.ErrThirdLoginFailed) // sso code 无效
//	errors.Is(err, zqauth.ErrUserNotFound)     // 用户已解除绑定
//	errors.Is(err, zqauth.ErrAPIThrottled)     // 被限流，可退避重试
package zqauth
