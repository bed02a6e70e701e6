package services

import (
	"context"
	"sync"
	"time"

	"livescore-service/logger"
)

const (
	// JoinTimeout 单个房间等待应答的上限
	JoinTimeout = 3000 * time.Millisecond

	// JoinDelay 相邻两次加入请求之间的固定间隔。
	// 这是对上游的时序约定,不是性能优化,不能去掉。
	JoinDelay = 200 * time.Millisecond
)

// RoomJoiner 房间加入 RPC 的边界,由 socket 客户端实现
type RoomJoiner interface {
	Join(lapangan string) (body map[string]interface{}, status int, err error)
}

// JoinResult 单块场地的终态加入结果,超时/取消时 Err 为 ErrTimeout
type JoinResult struct {
	Lapangan string `json:"lapangan"`
	Room     string `json:"room"`
	Status   int    `json:"status"`
	Success  bool   `json:"success"`
	TimedOut bool   `json:"timedOut"`
	Err      error  `json:"-"`
}

type joinReply struct {
	body   map[string]interface{}
	status int
	err    error
}

// RoomSubscriptionManager 为每块场地执行一次幂等的加入握手。
// 应答和超时赛跑,先到的信号决定结果,晚到的应答直接丢弃。
type RoomSubscriptionManager struct {
	joiner RoomJoiner
	store  *CourtStateStore

	joinTimeout time.Duration
	joinDelay   time.Duration

	mu        sync.Mutex
	joined    []string
	joinedSet map[string]bool
}

// NewRoomSubscriptionManager 创建房间订阅管理器
func NewRoomSubscriptionManager(joiner RoomJoiner, store *CourtStateStore) *RoomSubscriptionManager {
	return &RoomSubscriptionManager{
		joiner:      joiner,
		store:       store,
		joinTimeout: JoinTimeout,
		joinDelay:   JoinDelay,
		joinedSet:   make(map[string]bool),
	}
}

// JoinAll 依次加入全部场地房间,每块场地恰好得到一个终态结果。
// 单块场地失败或超时不影响其余场地;ctx 取消时在途等待按超时处理。
func (m *RoomSubscriptionManager) JoinAll(ctx context.Context, courts []string) []JoinResult {
	logger.Printf("[Room] Joining %d court rooms...", len(courts))

	results := make([]JoinResult, 0, len(courts))
	for i, lapangan := range courts {
		results = append(results, m.joinRoom(ctx, lapangan))

		if i < len(courts)-1 {
			select {
			case <-time.After(m.joinDelay):
			case <-ctx.Done():
				// 剩余场地按超时记录终态
				for _, rest := range courts[i+1:] {
					results = append(results, m.timeoutResult(rest))
				}
				return results
			}
		}
	}

	logger.Printf("[Room] ✅ Joined %d rooms", len(m.JoinedRooms()))
	return results
}

// joinRoom 发出一次加入请求,应答 / 3 秒超时 / 取消三者先到先得
func (m *RoomSubscriptionManager) joinRoom(ctx context.Context, lapangan string) JoinResult {
	room := "court_" + lapangan

	// 缓冲为 1: 晚到的应答写入后被整体丢弃,不会泄漏 goroutine
	ch := make(chan joinReply, 1)
	go func() {
		body, status, err := m.joiner.Join(lapangan)
		ch <- joinReply{body: body, status: status, err: err}
	}()

	var result JoinResult
	var body map[string]interface{}
	select {
	case reply := <-ch:
		body = reply.body
		result = JoinResult{
			Lapangan: lapangan,
			Room:     room,
			Status:   reply.status,
			Success:  reply.err == nil && reply.status == 200,
			Err:      reply.err,
		}
	case <-time.After(m.joinTimeout):
		result = m.timeoutResult(lapangan)
	case <-ctx.Done():
		result = m.timeoutResult(lapangan)
	}

	m.markJoined(room)

	if result.Success {
		m.store.RegisterJoin(lapangan, body)
		logger.Printf("[Room] ✅ %s", room)
	} else {
		m.store.RegisterJoin(lapangan, nil)
		if result.TimedOut {
			logger.Printf("[Room] ⚠️  %s: timeout", room)
		} else {
			logger.Printf("[Room] ⚠️  %s: status %d", room, result.Status)
		}
	}

	return result
}

func (m *RoomSubscriptionManager) timeoutResult(lapangan string) JoinResult {
	return JoinResult{
		Lapangan: lapangan,
		Room:     "court_" + lapangan,
		TimedOut: true,
		Err:      ErrTimeout,
	}
}

// markJoined 记入已加入集合,同一房间不会出现两次
func (m *RoomSubscriptionManager) markJoined(room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.joinedSet[room] {
		return
	}
	m.joinedSet[room] = true
	m.joined = append(m.joined, room)
}

// JoinedRooms 已加入的房间列表,按加入顺序
func (m *RoomSubscriptionManager) JoinedRooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.joined))
	copy(out, m.joined)
	return out
}
