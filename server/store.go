package server

import "sync"

// RoomStore 进程级房间表：惰性创建，清空即删除，无任何持久化
// 顶层映射有自己的锁，与各房间内部的锁互不嵌套
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	bc    *Broadcaster
}

// NewRoomStore 创建空的房间表（进程启动时为空）
func NewRoomStore(bc *Broadcaster) *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room), bc: bc}
}

// GetOrCreate 获取或创建房间；创建的房间不自动开局，等待全员 ready
func (s *RoomStore) GetOrCreate(id string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		r = NewRoom(id, s.bc)
		s.rooms[id] = r
		Log.Infof("room %s: created", id)
	}
	return r
}

// Get 只读查找，不存在返回 nil
func (s *RoomStore) Get(id string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[id]
}

// Remove 删除房间条目；调用方须保证名单已空且 Tick 已停
func (s *RoomStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	Log.Infof("room %s: removed", id)
}

// Count 当前房间数
func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
