package server

import "sync"

// Binding 连接当前绑定的 (房间, 玩家) 身份
type Binding struct {
	RoomID   string
	PlayerID PlayerID
}

// Registry 连接注册表：把传输层连接映射到仿真身份，仅用于断线清理
// 未 join 的连接没有条目，断开时不触碰任何房间
type Registry struct {
	mu    sync.RWMutex
	conns map[*ClientConn]Binding
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{conns: make(map[*ClientConn]Binding)}
}

// Bind 记录绑定；只在 join 成功时调用，重复 join 直接覆盖
func (g *Registry) Bind(c *ClientConn, roomID string, playerID PlayerID) {
	g.mu.Lock()
	g.conns[c] = Binding{RoomID: roomID, PlayerID: playerID}
	g.mu.Unlock()
}

// Lookup 查询连接的绑定；未 join 过返回 false
func (g *Registry) Lookup(c *ClientConn) (Binding, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.conns[c]
	return b, ok
}

// Unbind 删除绑定（断线清理收尾）
func (g *Registry) Unbind(c *ClientConn) {
	g.mu.Lock()
	delete(g.conns, c)
	g.mu.Unlock()
}
