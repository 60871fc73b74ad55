package server

import "encoding/json"

// Gateway 协议处理器：解码入站消息、按 action 分发、驱动房间生命周期
// 任何单条消息的失败都只影响这条消息，不影响其他连接和房间
type Gateway struct {
	store    *RoomStore
	registry *Registry
	bc       *Broadcaster
}

// NewGateway 组装协议处理器
func NewGateway(store *RoomStore, registry *Registry, bc *Broadcaster) *Gateway {
	return &Gateway{store: store, registry: registry, bc: bc}
}

// Dispatch 处理一条入站原始消息（来自 readPump）
func (g *Gateway) Dispatch(c *ClientConn, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		Log.Warnf("bad envelope: %v", err)
		return
	}
	if env.RoomID == "" || env.PlayerID == "" {
		Log.Warnf("envelope missing roomId/playerId, action=%q", env.Action)
		return
	}

	switch env.Action {
	case ActionJoin:
		g.handleJoin(c, env)
	case ActionUpdate:
		g.handleUpdate(env)
	case ActionInput:
		g.handleInput(env)
	default:
		// 未识别动作按 no-op 处理，不算错误
	}
}

// handleJoin 任何状态下都可 join：插入/覆盖玩家、登记绑定与订阅、广播名单
// join 本身从不开局
func (g *Gateway) handleJoin(c *ClientConn, env Envelope) {
	var p JoinPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		Log.Warnf("room %s: bad join payload from %s: %v", env.RoomID, env.PlayerID, err)
		return
	}

	// 同一连接换房间：先按断线流程退出旧房间
	if old, ok := g.registry.Lookup(c); ok && old.RoomID != env.RoomID {
		g.leaveRoom(c, old)
	}

	room := g.store.GetOrCreate(env.RoomID)
	room.Join(PlayerID(env.PlayerID), p.Nickname, p.Color)
	g.registry.Bind(c, env.RoomID, PlayerID(env.PlayerID))
	g.bc.Subscribe(env.RoomID, c)
	room.BroadcastRoster()
	Log.Infof("room %s: player %s joined (%s)", env.RoomID, env.PlayerID, p.Nickname)
}

// handleUpdate 白名单合并；合并生效才重播名单并评估开局条件
func (g *Gateway) handleUpdate(env Envelope) {
	var patch UpdatePatch
	if err := json.Unmarshal(env.Payload, &patch); err != nil {
		Log.Warnf("room %s: bad update payload from %s: %v", env.RoomID, env.PlayerID, err)
		return
	}
	room := g.store.Get(env.RoomID)
	if room == nil {
		return
	}
	if !room.ApplyUpdate(PlayerID(env.PlayerID), patch) {
		return // 无此玩家（与断线竞态），静默丢弃
	}
	room.BroadcastRoster()
	room.StartIfReady()
}

// handleInput 换道意图；不广播，效果由下一个 Tick 的快照携带
func (g *Gateway) handleInput(env Envelope) {
	var in InputPayload
	if err := json.Unmarshal(env.Payload, &in); err != nil {
		Log.Warnf("room %s: bad input payload from %s: %v", env.RoomID, env.PlayerID, err)
		return
	}
	room := g.store.Get(env.RoomID)
	if room == nil {
		return
	}
	room.ApplyInput(PlayerID(env.PlayerID), in.Input)
}

// Disconnect 连接关闭：按绑定清理房间，未 join 过的连接不触碰任何房间
func (g *Gateway) Disconnect(c *ClientConn) {
	if bind, ok := g.registry.Lookup(c); ok {
		g.leaveRoom(c, bind)
	}
	g.registry.Unbind(c)
	c.Close()
}

// leaveRoom 把连接从房间里摘除：退订、删玩家；房间清空则停表并从表中删除
func (g *Gateway) leaveRoom(c *ClientConn, bind Binding) {
	g.bc.Unsubscribe(bind.RoomID, c)
	room := g.store.Get(bind.RoomID)
	if room == nil {
		return
	}
	if remaining := room.RemovePlayer(bind.PlayerID); remaining == 0 {
		// RemovePlayer 清空时已同步停掉 Tick，这里可以安全删条目
		g.store.Remove(bind.RoomID)
	} else {
		room.BroadcastRoster()
	}
	Log.Infof("room %s: player %s left", bind.RoomID, bind.PlayerID)
}
