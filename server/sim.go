package server

import (
	"math"
	"time"
)

const (
	// TicksPerSecond 世界推进频率（60 TPS，约 16.7ms 一帧）
	TicksPerSecond = 60

	tickSeconds = 1.0 / float64(TicksPerSecond)
)

// tickInterval 为包级变量，便于测试时拉长避免后台 Tick 干扰
var tickInterval = time.Second / TicksPerSecond

// Start 切换 Lobby → Running：重置玩家与计分、铺设障碍池、调度周期 Tick
// 前置条件不满足（已在进行或名单为空）时返回 false
func (r *Room) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked()
}

func (r *Room) startLocked() bool {
	if r.running || len(r.players) == 0 {
		return false
	}
	r.running = true
	r.t = 0
	r.score = 0
	for _, p := range r.players {
		p.Alive = true
		p.X = 0
		p.Y = playerY
		p.Z = 0
		p.LaneTarget = CenterLane
		p.LaneCurrent = 0
	}
	r.obstacles = seedObstacles(r.rng)
	r.stopCh = make(chan struct{})
	go r.runTicker(r.stopCh)
	Log.Infof("room %s: round started, players=%d", r.ID, len(r.players))
	return true
}

// Stop 切换 Running → Ended：取消周期 Tick 并广播 gameOver；未在进行时为幂等 no-op
// 返回后保证不会再有该回合的 Tick 生效（Tick 入口会重查 running）
func (r *Room) Stop() {
	r.mu.Lock()
	r.stopLocked()
	r.mu.Unlock()
}

func (r *Room) stopLocked() {
	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
	r.stopCh = nil
	r.bc.Publish(r.ID, GameOverMessage{Type: MsgGameOver, RoomID: r.ID})
	Log.Infof("room %s: game over, score=%d", r.ID, int(math.Floor(r.score)))
}

// runTicker 每个回合一个推进协程；stop 关闭或 Tick 发现回合结束即退出
func (r *Room) runTicker(stop <-chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !r.tick() {
				return
			}
		}
	}
}

// tick 单帧推进：提速 → 计分 → 障碍前移/回收 → 换道平滑 → 碰撞 → 终局判定 → 广播
// 返回 false 表示回合已结束，推进协程应退出
func (r *Room) tick() bool {
	start := time.Now()
	r.mu.Lock()
	// Stop 可能竞速于已触发的 Tick，这里重查后按 no-op 退出
	if !r.running {
		r.mu.Unlock()
		return false
	}

	r.t += tickSeconds
	speed := r.params.BaseSpeed + math.Min(r.params.MaxSpeedDelta, r.t*r.params.RampRate)
	r.score += speed * tickSeconds * r.params.ScoreScale

	for _, o := range r.obstacles {
		o.Z += speed
		if o.Z > forwardBoundary {
			o.recycle(r.rng)
			r.metrics.IncRecycled()
		}
	}

	for _, p := range r.players {
		if !p.Alive {
			continue
		}
		p.LaneCurrent += (LaneX[p.LaneTarget] - p.LaneCurrent) * r.params.Smoothing
		p.X = p.LaneCurrent
	}

	alive := 0
	for _, p := range r.players {
		if !p.Alive {
			continue
		}
		for _, o := range r.obstacles {
			if math.Abs(o.X-p.X) < r.params.HitHalfWidth && math.Abs(o.Z-p.Z) < r.params.HitHalfWidth {
				p.Alive = false
				r.metrics.IncCollisions()
				break // 首次碰撞即死，后续障碍不再判定
			}
		}
		if p.Alive {
			alive++
		}
	}

	// 终局：全员阵亡则停表并广播 gameOver，本帧不再发快照
	if alive == 0 {
		r.stopLocked()
		r.mu.Unlock()
		r.metrics.AddTick(time.Since(start).Nanoseconds())
		return false
	}

	msg := r.gameStateLocked()
	r.mu.Unlock()

	if dropped := r.bc.Publish(r.ID, msg); dropped > 0 {
		r.metrics.AddDroppedSends(int64(dropped))
	}
	r.metrics.AddTick(time.Since(start).Nanoseconds())
	return true
}

func (r *Room) gameStateLocked() GameStateMessage {
	obs := make([]Obstacle, 0, len(r.obstacles))
	for _, o := range r.obstacles {
		obs = append(obs, *o)
	}
	return GameStateMessage{
		Type:   MsgGameState,
		RoomID: r.ID,
		Payload: GameStatePayload{
			Players:   r.playerStatesLocked(),
			Obstacles: obs,
			Score:     int(math.Floor(r.score)),
			Running:   r.running,
		},
	}
}
