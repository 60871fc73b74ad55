package server

import (
	"encoding/json"
	"sync"
)

// Broadcaster 按房间索引的订阅表：一次序列化，扇出到该房间的全部连接
// 发送对每个接收方都是非阻塞的，慢消费者被丢帧而不是拖垮别人
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[*ClientConn]struct{}
}

// NewBroadcaster 创建空订阅表
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[*ClientConn]struct{})}
}

// Subscribe 把连接加入房间的接收集合（join 成功后调用）
func (b *Broadcaster) Subscribe(roomID string, c *ClientConn) {
	b.mu.Lock()
	set, ok := b.subs[roomID]
	if !ok {
		set = make(map[*ClientConn]struct{})
		b.subs[roomID] = set
	}
	set[c] = struct{}{}
	b.mu.Unlock()
}

// Unsubscribe 把连接移出房间的接收集合；集合清空即删除条目
func (b *Broadcaster) Unsubscribe(roomID string, c *ClientConn) {
	b.mu.Lock()
	if set, ok := b.subs[roomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(b.subs, roomID)
		}
	}
	b.mu.Unlock()
}

// Publish 把消息广播给绑定到该房间的全部连接，返回被丢弃的发送数
// 单个接收方失败只影响它自己，不中断对其余成员的投递
func (b *Broadcaster) Publish(roomID string, v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		Log.Warnf("room %s: marshal broadcast: %v", roomID, err)
		return 0
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	dropped := 0
	for c := range b.subs[roomID] {
		if !c.Enqueue(data) {
			dropped++
		}
	}
	return dropped
}

// Subscribers 房间当前接收集合大小
func (b *Broadcaster) Subscribers(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[roomID])
}
