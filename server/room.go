package server

import (
	"math/rand"
	"sync"
	"time"
)

// SimParams 单个房间的仿真参数（可经 /admin/config 热更新）
type SimParams struct {
	BaseSpeed     float64 // 初速
	MaxSpeedDelta float64 // 加速上限（相对初速）
	RampRate      float64 // 每秒提速
	ScoreScale    float64 // 计分系数
	Smoothing     float64 // 换道平滑系数（每 Tick）
	HitHalfWidth  float64 // 碰撞盒半宽
}

func defaultSimParams() SimParams {
	return SimParams{
		BaseSpeed:     0.5,
		MaxSpeedDelta: 3.5,
		RampRate:      0.12,
		ScoreScale:    10,
		Smoothing:     0.15,
		HitHalfWidth:  1.6,
	}
}

// Room 房间世界：权威状态维护在内存，消息处理与 Tick 在同一把锁下串行
// 不同房间之间完全独立，互不阻塞
type Room struct {
	ID string

	mu        sync.Mutex
	players   map[PlayerID]*Player
	obstacles []*Obstacle
	running   bool
	t         float64 // 回合已进行秒数，驱动提速曲线
	score     float64 // 累计得分，展示时向下取整
	stopCh    chan struct{}

	params  SimParams
	rng     *rand.Rand
	bc      *Broadcaster
	metrics *RoomMetrics
}

// NewRoom 创建房间，初始化数据结构（不自动开局）
func NewRoom(id string, bc *Broadcaster) *Room {
	return &Room{
		ID:      id,
		players: make(map[PlayerID]*Player),
		params:  defaultSimParams(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		bc:      bc,
		metrics: &RoomMetrics{},
	}
}

// Join 以大厅默认值插入玩家；重复 playerId 整体覆盖（last join wins）
func (r *Room) Join(id PlayerID, nickname, color string) {
	r.mu.Lock()
	r.players[id] = newPlayer(id, nickname, color)
	r.mu.Unlock()
}

// ApplyUpdate 按白名单合并字段；玩家不存在（与断线竞态）按 no-op 处理
// 返回是否真的发生了合并
func (r *Room) ApplyUpdate(id PlayerID, patch UpdatePatch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return false
	}
	if patch.Ready != nil {
		p.Ready = *patch.Ready
	}
	if patch.Nickname != nil {
		p.Nickname = *patch.Nickname
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	return true
}

// ApplyInput 解释换道意图：只改 LaneTarget（夹在合法下标内），位置交给 Tick 平滑
// 死亡或不存在的玩家的输入直接忽略
func (r *Room) ApplyInput(id PlayerID, dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok || !p.Alive {
		r.metrics.IncInputsIgnored()
		return
	}
	switch dir {
	case "left":
		if p.LaneTarget > 0 {
			p.LaneTarget--
		}
	case "right":
		if p.LaneTarget < len(LaneX)-1 {
			p.LaneTarget++
		}
	default:
		return
	}
	r.metrics.IncInputsAccepted()
}

// StartIfReady 开局条件：未在进行、名单非空、全员 ready
// 满足则切换到 Running 并返回 true
func (r *Room) StartIfReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return r.startLocked()
}

// RemovePlayer 移除玩家并返回剩余人数；房间清空时同步停掉 Tick
func (r *Room) RemovePlayer(id PlayerID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
	if len(r.players) == 0 {
		r.stopLocked()
	}
	return len(r.players)
}

// PlayerCount 当前名单人数
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Running 是否处于回合进行中
func (r *Room) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Metrics 房间运行指标（原子计数，读取无需房间锁）
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}

// BroadcastRoster 向全房间推送大厅/名单快照
func (r *Room) BroadcastRoster() {
	r.mu.Lock()
	msg := StateMessage{Type: MsgState, RoomID: r.ID, Players: r.playerStatesLocked()}
	r.mu.Unlock()
	r.bc.Publish(r.ID, msg)
}

func (r *Room) playerStatesLocked() map[string]PlayerState {
	out := make(map[string]PlayerState, len(r.players))
	for id, p := range r.players {
		out[string(id)] = p.state()
	}
	return out
}
