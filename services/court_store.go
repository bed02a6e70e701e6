package services

import (
	"sort"
	"sync"
)

// 场地状态机: waiting → on_court → playing → finished,
// finished 之后只能被下一场的 playgame 重新拉回 on_court。
const (
	StatusWaiting  = "waiting"
	StatusOnCourt  = "on_court"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Score 规范化的比分快照。指针字段为 nil 表示该值从未上报过,
// JSON 序列化成 null,与上游记分端的输出保持一致。
type Score struct {
	Team1Set1  *int `json:"team1set1"`
	Team2Set1  *int `json:"team2set1"`
	Team1Set2  *int `json:"team1set2"`
	Team2Set2  *int `json:"team2set2"`
	Team1Set3  *int `json:"team1set3"`
	Team2Set3  *int `json:"team2set3"`
	Team1Point *int `json:"team1point"`
	Team2Point *int `json:"team2point"`
	Pemenang   *int `json:"pemenang"`
	Retired    *int `json:"retired"`
	Durasi     *int `json:"durasi"`
}

// Clone 深拷贝比分快照,指针字段逐个复制,快照之间互不影响
func (s *Score) Clone() *Score {
	if s == nil {
		return nil
	}
	return &Score{
		Team1Set1:  clonePtr(s.Team1Set1),
		Team2Set1:  clonePtr(s.Team2Set1),
		Team1Set2:  clonePtr(s.Team1Set2),
		Team2Set2:  clonePtr(s.Team2Set2),
		Team1Set3:  clonePtr(s.Team1Set3),
		Team2Set3:  clonePtr(s.Team2Set3),
		Team1Point: clonePtr(s.Team1Point),
		Team2Point: clonePtr(s.Team2Point),
		Pemenang:   clonePtr(s.Pemenang),
		Retired:    clonePtr(s.Retired),
		Durasi:     clonePtr(s.Durasi),
	}
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ScoreEvent 一条原始比分事件及其接收时间
type ScoreEvent struct {
	Data       interface{} `json:"data"`
	ReceivedAt string      `json:"receivedAt"`
}

// CourtState 单块场地的权威状态记录,只通过规范化事件更新
type CourtState struct {
	Status       string                 `json:"status"`
	MatchInfo    map[string]interface{} `json:"matchInfo,omitempty"`
	CurrentScore *Score                 `json:"currentScore,omitempty"`
	PlayData     interface{}            `json:"playData,omitempty"`
	ScoreHistory []ScoreEvent           `json:"scoreHistory,omitempty"`
	FinalScore   *Score                 `json:"finalScore,omitempty"`
	FinishData   interface{}            `json:"finishData,omitempty"`
	InitialData  map[string]interface{} `json:"initialData,omitempty"`
	JoinedAt     string                 `json:"joinedAt,omitempty"`
	LastUpdate   string                 `json:"lastUpdate,omitempty"`
}

// CourtStateStore 场地编号到状态记录的映射,所有投影的唯一数据来源。
// 同一把锁串行化全部写入,保证同场地事件按到达顺序应用。
type CourtStateStore struct {
	mu     sync.RWMutex
	courts map[string]*CourtState
}

// NewCourtStateStore 创建状态存储
func NewCourtStateStore() *CourtStateStore {
	return &CourtStateStore{
		courts: make(map[string]*CourtState),
	}
}

// getOrCreateLocked 懒创建场地记录,初始状态 waiting。调用方必须持有写锁。
func (s *CourtStateStore) getOrCreateLocked(lapangan string) *CourtState {
	if st, ok := s.courts[lapangan]; ok {
		return st
	}
	st := &CourtState{Status: StatusWaiting}
	s.courts[lapangan] = st
	return st
}

// ApplyMatchStart 应用 playgame 事件: matchInfo 整体替换,
// currentScore 无条件从载荷重建,旧比赛的比分不能漏进新比赛。
func (s *CourtStateStore) ApplyMatchStart(lapangan string, obj map[string]interface{}, raw interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(lapangan)
	st.MatchInfo = obj
	st.Status = StatusOnCourt
	st.LastUpdate = WIBTimestamp()

	// 兼容旧读取方: initialData.match 跟随最新 playgame。
	// 旧快照可能正被读者序列化,这里写时复制,绝不原地改 map。
	initial := make(map[string]interface{}, len(st.InitialData)+1)
	for k, v := range st.InitialData {
		initial[k] = v
	}
	initial["match"] = obj
	st.InitialData = initial

	st.CurrentScore = StartScore(obj)
}

// ApplyScoreUpdate 应用 updatescore 事件: 逐字段合并,
// 未上报的字段保留上一次的值,原始载荷追加到 scoreHistory。
func (s *CourtStateStore) ApplyScoreUpdate(lapangan string, obj map[string]interface{}, raw interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(lapangan)
	st.PlayData = raw
	st.Status = StatusPlaying
	st.LastUpdate = WIBTimestamp()
	st.CurrentScore = ReconcileScore(obj, st.CurrentScore)
	st.ScoreHistory = append(st.ScoreHistory, ScoreEvent{
		Data:       raw,
		ReceivedAt: WIBTimestamp(),
	})
}

// ApplyMatchFinish 应用 clearLapangan 事件: 冻结 finalScore,
// currentScore 保持不动,结束事件不能毁掉最后已知的比分。
func (s *CourtStateStore) ApplyMatchFinish(lapangan string, raw interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(lapangan)
	st.FinalScore = st.CurrentScore.Clone()
	st.Status = StatusFinished
	st.FinishData = raw
	st.LastUpdate = WIBTimestamp()
}

// RegisterJoin 记录加入房间的结果。握手返回体存入 initialData,
// 如果里面带了 match 数据,在任何实时事件到来之前先填好
// matchInfo 和 currentScore。
func (s *CourtStateStore) RegisterJoin(lapangan string, body map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(lapangan)
	if st.JoinedAt == "" {
		st.JoinedAt = WIBTimestamp()
	}
	if len(body) == 0 {
		return
	}

	st.InitialData = body
	st.LastUpdate = WIBTimestamp()

	if match, ok := body["match"].(map[string]interface{}); ok {
		st.MatchInfo = match
		st.CurrentScore = PrimeScore(match)
	}
}

// Snapshot 返回单块场地的一致性快照
func (s *CourtStateStore) Snapshot(lapangan string) (*CourtState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.courts[lapangan]
	if !ok {
		return nil, false
	}
	return cloneState(st), true
}

// Get 按场地编号取快照,场地不存在时返回 ErrCourtNotFound
func (s *CourtStateStore) Get(lapangan string) (*CourtState, error) {
	st, ok := s.Snapshot(lapangan)
	if !ok {
		return nil, ErrCourtNotFound
	}
	return st, nil
}

// All 返回全部场地的快照
func (s *CourtStateStore) All() map[string]*CourtState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*CourtState, len(s.courts))
	for lap, st := range s.courts {
		out[lap] = cloneState(st)
	}
	return out
}

// KnownCourts 当前已知的场地编号,排序后返回
func (s *CourtStateStore) KnownCourts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courts := make([]string, 0, len(s.courts))
	for lap := range s.courts {
		courts = append(courts, lap)
	}
	sort.Strings(courts)
	return courts
}

// Len 已知场地数量
func (s *CourtStateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courts)
}

// Clear 清空全部场地状态 (测试/换场次用的管理操作)
func (s *CourtStateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courts = make(map[string]*CourtState)
}

// cloneState 复制状态记录。matchInfo 等 map 只整体替换从不原地改,
// 共享引用是安全的;比分和历史切片单独复制。
func cloneState(st *CourtState) *CourtState {
	c := *st
	c.CurrentScore = st.CurrentScore.Clone()
	c.FinalScore = st.FinalScore.Clone()
	if st.ScoreHistory != nil {
		c.ScoreHistory = append([]ScoreEvent(nil), st.ScoreHistory...)
	}
	return &c
}
