package server

import (
	"encoding/json"
	"math"
	"testing"
)

func startWithPlayer(t *testing.T, r *Room, id PlayerID) {
	t.Helper()
	r.Join(id, "tester", "#fff")
	if !r.Start() {
		t.Fatalf("Start failed for room %s", r.ID)
	}
}

// 把障碍全部推到远端，避免随机车道撞到测试玩家
func parkObstacles(r *Room) {
	r.mu.Lock()
	for _, o := range r.obstacles {
		o.Z = -10000
	}
	r.mu.Unlock()
}

func TestStartResetsStateAndSeedsPool(t *testing.T) {
	r := newTestRoom("r1")
	r.Join("a", "A", "red")
	r.mu.Lock()
	p := r.players["a"]
	p.Ready = true
	p.Alive = false
	p.LaneTarget = 0
	p.LaneCurrent = -3
	r.score = 99
	r.mu.Unlock()

	if !r.Start() {
		t.Fatal("Start returned false with a non-empty roster")
	}
	defer r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.stopCh == nil {
		t.Fatal("running/stopCh not set together on start")
	}
	if r.t != 0 || r.score != 0 {
		t.Fatalf("t/score not reset: t=%v score=%v", r.t, r.score)
	}
	if !p.Alive || p.LaneTarget != CenterLane || p.LaneCurrent != 0 || p.X != 0 || p.Z != 0 {
		t.Fatalf("player not reset to spawn defaults: %+v", p)
	}
	if len(r.obstacles) != obstacleCount {
		t.Fatalf("obstacle pool size = %d, want %d", len(r.obstacles), obstacleCount)
	}
	for i, o := range r.obstacles {
		want := -obstacleSpacing * float64(i+1)
		if o.Z != want {
			t.Errorf("obstacle %d seeded at z=%v, want %v", i, o.Z, want)
		}
		if !isLaneX(o.X) {
			t.Errorf("obstacle %d off-lane x=%v", i, o.X)
		}
		if o.ID == "" {
			t.Errorf("obstacle %d missing id", i)
		}
	}
}

func TestStartPreconditions(t *testing.T) {
	r := newTestRoom("r1")
	if r.Start() {
		t.Fatal("Start succeeded on an empty roster")
	}
	startWithPlayer(t, r, "a")
	defer r.Stop()
	if r.Start() {
		t.Fatal("Start succeeded while already running")
	}
}

func TestStopIdempotent(t *testing.T) {
	r := newTestRoom("r1")
	r.Stop() // 未开局，应为 no-op
	startWithPlayer(t, r, "a")
	r.Stop()
	r.Stop()
	if r.Running() {
		t.Fatal("room still running after Stop")
	}
}

func TestTickAfterStopIsNoop(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	r.Stop()
	if r.tick() {
		t.Fatal("tick advanced a stopped room")
	}
	if got := r.Metrics().Snapshot()["tick_count"].(int64); got != 0 {
		t.Fatalf("stopped room counted %d ticks", got)
	}
}

func TestSpeedRampClamped(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	defer r.Stop()
	parkObstacles(r)

	// 提速已饱和：score 增量应为 (0.5+3.5)*dt*10
	r.mu.Lock()
	r.t = 100
	before := r.score
	r.mu.Unlock()

	if !r.tick() {
		t.Fatal("tick reported round over")
	}

	r.mu.Lock()
	delta := r.score - before
	r.mu.Unlock()
	want := 4.0 * tickSeconds * 10
	if math.Abs(delta-want) > 1e-9 {
		t.Fatalf("score delta = %v, want %v", delta, want)
	}
}

func TestScoreAccumulatesFromZero(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	defer r.Stop()
	parkObstacles(r)

	for i := 0; i < 10; i++ {
		if !r.tick() {
			t.Fatal("round ended unexpectedly")
		}
	}
	r.mu.Lock()
	score, tt := r.score, r.t
	r.mu.Unlock()
	if score <= 0 {
		t.Fatalf("score = %v after 10 ticks, want > 0", score)
	}
	if math.Abs(tt-10*tickSeconds) > 1e-9 {
		t.Fatalf("t = %v, want %v", tt, 10*tickSeconds)
	}
}

func TestObstacleRecycleBounds(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	defer r.Stop()
	parkObstacles(r)

	r.mu.Lock()
	o := r.obstacles[0]
	o.Z = forwardBoundary // 下一帧必然越界
	id := o.ID
	r.mu.Unlock()

	if !r.tick() {
		t.Fatal("tick reported round over")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if o.Z > -recycleDepthMin || o.Z < -(recycleDepthMin+recycleDepthSpan) {
		t.Fatalf("recycled z = %v, want within [-240,-160]", o.Z)
	}
	if !isLaneX(o.X) {
		t.Fatalf("recycled x = %v, not a lane coordinate", o.X)
	}
	if o.ID != id {
		t.Fatal("recycle must reuse the obstacle in place, not replace it")
	}
	if got := r.metrics.Snapshot()["recycled"].(int64); got != 1 {
		t.Fatalf("recycled counter = %d, want 1", got)
	}
}

func TestObstacleZMonotonicBeforeRecycle(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	defer r.Stop()
	parkObstacles(r)

	r.mu.Lock()
	prev := make([]float64, len(r.obstacles))
	for i, o := range r.obstacles {
		prev[i] = o.Z
	}
	r.mu.Unlock()

	for n := 0; n < 5; n++ {
		if !r.tick() {
			t.Fatal("round ended unexpectedly")
		}
		r.mu.Lock()
		for i, o := range r.obstacles {
			if o.Z <= prev[i] {
				t.Fatalf("obstacle %d z went backward: %v -> %v", i, prev[i], o.Z)
			}
			prev[i] = o.Z
		}
		r.mu.Unlock()
	}
}

func TestLaneSmoothingConverges(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	defer r.Stop()
	parkObstacles(r)

	r.ApplyInput("a", "right") // 目标车道 2，X 应逼近 4
	for i := 0; i < 200; i++ {
		if !r.tick() {
			t.Fatal("round ended unexpectedly")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.players["a"]
	if math.Abs(p.LaneCurrent-LaneX[2]) > 0.01 {
		t.Fatalf("laneCurrent = %v, want ~%v", p.LaneCurrent, LaneX[2])
	}
	if p.X != p.LaneCurrent {
		t.Fatalf("x (%v) must track laneCurrent (%v)", p.X, p.LaneCurrent)
	}
}

func TestCollisionKillsOnceAndStopsSmoothing(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	r.Join("b", "B", "blue") // 第二个玩家保持回合继续
	r.mu.Lock()
	pb := r.players["b"]
	pb.Alive = true
	pb.LaneTarget = 0
	pb.LaneCurrent = LaneX[0]
	pb.X = LaneX[0]
	r.mu.Unlock()
	defer r.Stop()
	parkObstacles(r)

	// 两个障碍都压在玩家 a 的车道与深度上：只应计一次碰撞
	r.mu.Lock()
	r.obstacles[0].X, r.obstacles[0].Z = 0, -0.2
	r.obstacles[1].X, r.obstacles[1].Z = 0, -0.2
	r.mu.Unlock()

	if !r.tick() {
		t.Fatal("round should continue while b is alive")
	}

	r.mu.Lock()
	pa := r.players["a"]
	lane := pa.LaneCurrent
	r.mu.Unlock()
	if pa.Alive {
		t.Fatal("player a survived an overlapping obstacle")
	}
	if got := r.Metrics().Snapshot()["collisions"].(int64); got != 1 {
		t.Fatalf("collisions counter = %d, want 1 (first hit wins)", got)
	}

	// 死亡后位置不再被平滑步进更新
	r.ApplyInput("a", "right")
	if !r.tick() {
		t.Fatal("round should continue while b is alive")
	}
	r.mu.Lock()
	if r.players["a"].LaneCurrent != lane {
		t.Fatal("dead player's laneCurrent kept moving")
	}
	if r.players["a"].LaneTarget != CenterLane {
		t.Fatal("dead player's input changed laneTarget")
	}
	r.mu.Unlock()
}

func TestLastDeathEmitsSingleGameOver(t *testing.T) {
	bc := NewBroadcaster()
	r := NewRoom("r2", bc)
	c := NewClientConn(nil)
	bc.Subscribe("r2", c)

	r.Join("a", "A", "red")
	if !r.Start() {
		t.Fatal("Start failed")
	}
	parkObstacles(r)
	drain(c) // 丢掉开局前的噪声

	// 先跑一帧正常快照
	if !r.tick() {
		t.Fatal("round ended before the staged collision")
	}
	msgs := drain(c)
	if len(msgs) != 1 || typeOf(t, msgs[0]) != MsgGameState {
		t.Fatalf("expected one gameState before death, got %d messages", len(msgs))
	}

	// 摆一个必撞障碍：本帧淘汰唯一玩家 → 恰好一条 gameOver，不再有快照
	r.mu.Lock()
	r.obstacles[0].X, r.obstacles[0].Z = 0, -0.2
	r.mu.Unlock()
	if r.tick() {
		t.Fatal("tick should report round over after the last death")
	}
	msgs = drain(c)
	if len(msgs) != 1 || typeOf(t, msgs[0]) != MsgGameOver {
		t.Fatalf("expected exactly one gameOver, got %d messages", len(msgs))
	}
	if r.Running() {
		t.Fatal("room still running after last death")
	}

	// 终局之后不再有任何 Tick 生效
	if r.tick() {
		t.Fatal("tick ran after stop")
	}
	if got := drain(c); len(got) != 0 {
		t.Fatalf("got %d broadcasts after gameOver", len(got))
	}
}

func TestSnapshotScoreFloored(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	defer r.Stop()

	r.mu.Lock()
	r.score = 5.97
	msg := r.gameStateLocked()
	r.mu.Unlock()
	if msg.Payload.Score != 5 {
		t.Fatalf("wire score = %d, want floor(5.97) = 5", msg.Payload.Score)
	}
	if !msg.Payload.Running {
		t.Fatal("snapshot running flag lost")
	}
}

func TestRestartAfterGameOverReseeds(t *testing.T) {
	r := newTestRoom("r1")
	startWithPlayer(t, r, "a")
	r.Stop()

	r.mu.Lock()
	r.players["a"].Ready = true
	r.mu.Unlock()
	if !r.StartIfReady() {
		t.Fatal("restart failed after game over")
	}
	defer r.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.obstacles) != obstacleCount {
		t.Fatalf("pool not reseeded: %d obstacles", len(r.obstacles))
	}
	if !r.players["a"].Alive {
		t.Fatal("player not revived on restart")
	}
}

func isLaneX(x float64) bool {
	for _, lx := range LaneX {
		if x == lx {
			return true
		}
	}
	return false
}

func typeOf(t *testing.T, raw []byte) string {
	t.Helper()
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		t.Fatalf("broadcast is not valid JSON: %v", err)
	}
	return probe.Type
}
