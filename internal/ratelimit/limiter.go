package ratelimit

import (
	"sync"
	"time"
)

// Limiter 按来源标识限流。实现可替换为共享存储（如 Redis）版本，
// 当前为单进程内存实现，多实例部署时各实例独立计数。
type Limiter interface {
	Hit(key string) bool
}

type entry struct {
	count   int
	resetAt time.Time
}

// FixedWindow 固定窗口计数器。窗口内命中次数超过 maxHits 时拒绝，
// 第 maxHits 次仍然放行。
type FixedWindow struct {
	mu      sync.Mutex
	entries map[string]*entry
	window  time.Duration
	maxHits int

	now func() time.Time
}

func NewFixedWindow(window time.Duration, maxHits int) *FixedWindow {
	return &FixedWindow{
		entries: make(map[string]*entry),
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
}

func (l *FixedWindow) Hit(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		// 窗口过期后重置而不是顺延
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	e.count++
	return e.count <= l.maxHits
}

// Sweep 移除已过期的条目，防止一次性来源撑大内存
func (l *FixedWindow) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}

// StartSweeper 启动周期清理协程，运行至进程结束
func (l *FixedWindow) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			l.Sweep()
		}
	}()
}

func (l *FixedWindow) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
