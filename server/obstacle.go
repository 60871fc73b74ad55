package server

import (
	"math/rand"

	"github.com/google/uuid"
)

// LaneX 固定车道横坐标表；玩家与障碍都只落在这几个 X 上
var LaneX = []float64{-4, 0, 4}

// CenterLane 回合开始时玩家所在的车道下标
const CenterLane = 1

const (
	playerY   = 0.5 // 玩家与障碍的固定高度
	obstacleY = 0.5

	// 障碍池参数：固定 8 个障碍，起始按 20 单位等距铺开
	obstacleCount   = 8
	obstacleSpacing = 20.0

	// 越过玩家平面 6 单位即回收；回收后压回 [-240,-160) 的随机深度
	forwardBoundary  = 6.0
	recycleDepthMin  = 160.0
	recycleDepthSpan = 80.0
)

// Obstacle 车道上的障碍；池内复用，不销毁
type Obstacle struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// seedObstacles 回合开始时铺设障碍池：等距负深度覆盖可视距离
func seedObstacles(rng *rand.Rand) []*Obstacle {
	obs := make([]*Obstacle, 0, obstacleCount)
	for i := 0; i < obstacleCount; i++ {
		obs = append(obs, &Obstacle{
			ID: uuid.NewString(),
			X:  LaneX[rng.Intn(len(LaneX))],
			Y:  obstacleY,
			Z:  -obstacleSpacing * float64(i+1),
		})
	}
	return obs
}

// recycle 就地复用：随机换道并压回远端，保证障碍流错落而非齐步
func (o *Obstacle) recycle(rng *rand.Rand) {
	o.X = LaneX[rng.Intn(len(LaneX))]
	o.Z = -(recycleDepthMin + rng.Float64()*recycleDepthSpan)
}
