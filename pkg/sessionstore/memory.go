package sessionstore

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Memory 实现
// =============================================================================

// memoryEntry 内存存储条目。
type memoryEntry struct {
	value string
	// expireAt 为零值表示永不过期。
	expireAt time.Time
}

// expired 判断条目在 now 时刻是否已过期。
func (e memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// Memory 基于 map 的进程内存储实现。
// 过期采用懒惰检查：Get 时发现过期即删除并按未命中处理。
// map 本身不是并发安全的，内部用 RWMutex 保护。
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now 可替换，用于测试时推进时间。
	now func() time.Time
}

// NewMemory 创建内存存储。
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get 获取值。过期条目在读取时被清除。
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	if entry.expired(m.now()) {
		m.mu.Lock()
		// double-check: 持写锁期间条目可能已被覆盖
		if cur, ok := m.entries[key]; ok && cur.expired(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}

	return entry.value, true, nil
}

// Set 存储值。ttl <= 0 表示永不过期。
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expireAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete 删除 key。
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len 返回当前条目数（含尚未被懒惰清除的过期条目）。
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
