package server

import "encoding/json"

// 入站动作类型（action 字段）
const (
	ActionJoin   = "join"
	ActionUpdate = "update"
	ActionInput  = "input"
)

// Envelope 客户端消息的统一信封
// 示例：{"roomId":"r1","playerId":"alice","action":"join","payload":{...}}
type Envelope struct {
	RoomID   string          `json:"roomId"`
	PlayerID string          `json:"playerId"`
	Action   string          `json:"action"`
	Payload  json.RawMessage `json:"payload"`
}

// JoinPayload join 动作的负载
type JoinPayload struct {
	Nickname string `json:"nickname"`
	Color    string `json:"color"`
}

// UpdatePatch update 动作允许修改的字段白名单
// 指针字段：缺省的键不会覆盖已有值；仿真权威字段（alive/x/laneCurrent）不可由客户端改写
type UpdatePatch struct {
	Ready    *bool   `json:"ready,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// InputPayload input 动作的负载，input 取 "left" 或 "right"
type InputPayload struct {
	Input string `json:"input"`
}

// 出站消息类型（type 字段）
const (
	MsgState     = "state"
	MsgGameState = "gameState"
	MsgGameOver  = "gameOver"
)

// StateMessage 大厅/名单快照
type StateMessage struct {
	Type    string                 `json:"type"`
	RoomID  string                 `json:"roomId"`
	Players map[string]PlayerState `json:"players"`
}

// GameStatePayload 每 Tick 的仿真快照内容
type GameStatePayload struct {
	Players   map[string]PlayerState `json:"players"`
	Obstacles []Obstacle             `json:"obstacles"`
	Score     int                    `json:"score"`
	Running   bool                   `json:"running"`
}

// GameStateMessage 每 Tick 的仿真快照
type GameStateMessage struct {
	Type    string           `json:"type"`
	RoomID  string           `json:"roomId"`
	Payload GameStatePayload `json:"payload"`
}

// GameOverMessage 回合结束通知
type GameOverMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}
