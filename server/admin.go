package server

import (
	"encoding/json"
	"net/http"
)

// AdminHandler 管理与监控接口；只查已有房间，不会凭空创建
type AdminHandler struct {
	store *RoomStore
}

func NewAdminHandler(store *RoomStore) *AdminHandler {
	return &AdminHandler{store: store}
}

// HandleConfig 提供房间仿真参数的读取与热更新
// GET /admin/config?room=r1  返回当前参数
// POST /admin/config?room=r1 以 JSON 载荷更新部分字段
func (h *AdminHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	room := h.store.Get(roomID)
	if room == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	type cfg struct {
		BaseSpeed     *float64 `json:"baseSpeed,omitempty"`
		MaxSpeedDelta *float64 `json:"maxSpeedDelta,omitempty"`
		RampRate      *float64 `json:"rampRate,omitempty"`
		ScoreScale    *float64 `json:"scoreScale,omitempty"`
		Smoothing     *float64 `json:"smoothing,omitempty"`
		HitHalfWidth  *float64 `json:"hitHalfWidth,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		room.mu.Lock()
		cur := cfg{
			BaseSpeed:     &room.params.BaseSpeed,
			MaxSpeedDelta: &room.params.MaxSpeedDelta,
			RampRate:      &room.params.RampRate,
			ScoreScale:    &room.params.ScoreScale,
			Smoothing:     &room.params.Smoothing,
			HitHalfWidth:  &room.params.HitHalfWidth,
		}
		out, _ := json.Marshal(cur)
		room.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		room.mu.Lock()
		if body.BaseSpeed != nil {
			room.params.BaseSpeed = *body.BaseSpeed
		}
		if body.MaxSpeedDelta != nil {
			room.params.MaxSpeedDelta = *body.MaxSpeedDelta
		}
		if body.RampRate != nil {
			room.params.RampRate = *body.RampRate
		}
		if body.ScoreScale != nil {
			room.params.ScoreScale = *body.ScoreScale
		}
		if body.Smoothing != nil {
			room.params.Smoothing = *body.Smoothing
		}
		if body.HitHalfWidth != nil {
			room.params.HitHalfWidth = *body.HitHalfWidth
		}
		p := room.params
		room.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		Log.Infof("config updated: room=%s base=%.2f maxDelta=%.2f ramp=%.3f scale=%.1f smooth=%.2f hit=%.2f",
			roomID, p.BaseSpeed, p.MaxSpeedDelta, p.RampRate, p.ScoreScale, p.Smoothing, p.HitHalfWidth)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=r1
func (h *AdminHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	room := h.store.Get(roomID)
	if room == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	payload := map[string]any{
		"room":    roomID,
		"players": room.PlayerCount(),
		"running": room.Running(),
		"metrics": room.Metrics().Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
