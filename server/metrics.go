package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount      int64 // 统计的 Tick 次数
	InputsAccepted int64 // 被接受的换道输入数
	InputsIgnored  int64 // 因玩家不存在或已死亡被忽略的输入数
	Collisions     int64 // 碰撞淘汰次数
	Recycled       int64 // 障碍回收次数
	SendsDropped   int64 // 广播时因队列满/连接关闭被丢弃的发送数
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncInputsAccepted() { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncInputsIgnored()  { atomic.AddInt64(&m.InputsIgnored, 1) }
func (m *RoomMetrics) IncCollisions()     { atomic.AddInt64(&m.Collisions, 1) }
func (m *RoomMetrics) IncRecycled()       { atomic.AddInt64(&m.Recycled, 1) }
func (m *RoomMetrics) AddDroppedSends(n int64) { atomic.AddInt64(&m.SendsDropped, n) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"inputs_ignored":  atomic.LoadInt64(&m.InputsIgnored),
		"collisions":      atomic.LoadInt64(&m.Collisions),
		"recycled":        atomic.LoadInt64(&m.Recycled),
		"sends_dropped":   atomic.LoadInt64(&m.SendsDropped),
		"avg_tick_ms":     avgMs,
	}
}
