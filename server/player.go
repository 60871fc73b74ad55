package server

// PlayerID 表示玩家唯一标识（房间内唯一，由客户端提供，重复即覆盖）
type PlayerID string

// PlayerState 为广播给客户端的轻量状态
type PlayerState struct {
	ID         string  `json:"id"`
	Nickname   string  `json:"nickname"`
	Color      string  `json:"color"`
	Ready      bool    `json:"ready"`
	Alive      bool    `json:"alive"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	LaneTarget int     `json:"laneTarget"`
}

// Player 房间内的玩家实体（服务端权威状态）
// LaneCurrent 只由 Tick 的平滑步进写入，客户端输入只能改 LaneTarget
type Player struct {
	ID       PlayerID
	Nickname string
	Color    string

	Ready bool
	Alive bool

	X, Y, Z     float64
	LaneTarget  int
	LaneCurrent float64
}

// newPlayer 以大厅默认值创建玩家（join 与重复 join 都走这里）
func newPlayer(id PlayerID, nickname, color string) *Player {
	return &Player{
		ID:         id,
		Nickname:   nickname,
		Color:      color,
		Y:          playerY,
		LaneTarget: CenterLane,
	}
}

// state 导出为广播用的轻量结构
func (p *Player) state() PlayerState {
	return PlayerState{
		ID:         string(p.ID),
		Nickname:   p.Nickname,
		Color:      p.Color,
		Ready:      p.Ready,
		Alive:      p.Alive,
		X:          p.X,
		Y:          p.Y,
		Z:          p.Z,
		LaneTarget: p.LaneTarget,
	}
}
