package sessionstore

import "errors"

var (
	// ErrNilClient 表示传入的后端客户端为 nil。
	ErrNilClient = errors.New("sessionstore: nil client")

	// ErrClosed 表示存储已关闭。
	ErrClosed = errors.New("sessionstore: store closed")
)
