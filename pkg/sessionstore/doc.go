// Package sessionstore 提供 SDK 会话数据的键值存储抽象。
//
// # 功能概述
//
//   - Store 接口：带可选 TTL 的键值存储契约
//   - Memory：进程内 map 实现，懒惰过期
//   - Redis：基于 redis.UniversalClient 的分布式实现，原生 TTL
//   - Ristretto：基于 ristretto 的本地高性能实现（异步写入）
//
// # 缺失语义
//
// key 不存在（或已过期）不是错误：Get 通过 ok == false 表达缺失，
// error 仅承载后端传输故障（如 Redis I/O 错误）。调用方因此无需在
// 不同后端之间区分"未命中"的错误形态。
//
// # TTL 语义
//
// ttl <= 0 表示永不过期。TTL 精度由后端决定：
//   - Redis 原生支持，精确过期（分布式部署的正确性依赖于此——
//     服务端 Token 已失效而本地缓存未过期会造成多余的 401 往返）
//   - Memory 在读取时懒惰检查，过期后的 Get 返回未命中
//   - Ristretto 原生支持，但写入异步，测试场景需调用 Wait
package sessionstore
