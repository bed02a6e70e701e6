package services

import "time"

// MatchRecord 从持久化存储取回的比赛记录 (不是实时场地状态)
type MatchRecord struct {
	UID           string
	Lapangan      string
	TournamentUID string

	Draw     string
	Entry    string
	Round    string
	Team1    string
	Team2    string
	Menang   string
	Pemenang *int
	Retired  int
	Status   string
	Plandate string

	Team1Set1 int
	Team2Set1 int
	Team1Set2 int
	Team2Set2 int
	Team1Set3 int
	Team2Set3 int
	Team1Set4 int
	Team2Set4 int
	Team1Set5 int
	Team2Set5 int

	Durasi    int
	Starttime *time.Time
	Endtime   *time.Time
}

// BTPMatchInfo 推送记录里的比赛引用块
type BTPMatchInfo struct {
	DrawUID  string `json:"draw_uid"`
	EntryUID string `json:"entry_uid"`
	Round    string `json:"round"`
	Team1UID string `json:"team1_uid"`
	Team2UID string `json:"team2_uid"`
	Status   string `json:"status"`
	Retired  bool   `json:"retired"`
	Plandate string `json:"plandate"`
}

// BTPSubmission BTP 要求的严格推送格式
type BTPSubmission struct {
	DurationMS   int64         `json:"duration_ms"`
	EndTS        int64         `json:"end_ts"`
	NetworkScore [][]int       `json:"network_score"`
	Team1Won     bool          `json:"team1_won"`
	Presses      []interface{} `json:"presses"`

	CourtID         string `json:"court_id"`
	PertandinganUID string `json:"pertandingan_uid"`
	TournamentID    string `json:"tournament_id"`

	ShuttleCount int `json:"shuttle_count"`

	MatchInfo BTPMatchInfo `json:"match_info"`
}

// BuildNetworkScore 构造逐局比分矩阵 [[t1,t2], ...],第 1 到第 5 局。
// 双方都是 0 的局视为没打,整局跳过 —— 真实 0-0 平局和未开打
// 在数据上无法区分,上游就是这么定义的,保持原样。
func BuildNetworkScore(m *MatchRecord) [][]int {
	sets := [][2]int{
		{m.Team1Set1, m.Team2Set1},
		{m.Team1Set2, m.Team2Set2},
		{m.Team1Set3, m.Team2Set3},
		{m.Team1Set4, m.Team2Set4},
		{m.Team1Set5, m.Team2Set5},
	}

	scores := make([][]int, 0, len(sets))
	for _, s := range sets {
		if s[0] > 0 || s[1] > 0 {
			scores = append(scores, []int{s[0], s[1]})
		}
	}
	return scores
}

// DetermineWinner 判定 team1 是否获胜,规则按优先级取第一条命中:
// 1. pemenang 字段直接指定获胜方
// 2. menang 字段 (获胜队伍 uid) 与 team1 比较
// 3. 按比分矩阵数局数,严格多者胜;平局或空矩阵默认 false (team2)
func DetermineWinner(m *MatchRecord, networkScore [][]int) bool {
	if m.Pemenang != nil {
		return *m.Pemenang == 1
	}

	if m.Menang != "" && m.Team1 != "" {
		return m.Menang == m.Team1
	}

	if len(networkScore) > 0 {
		team1Sets := 0
		team2Sets := 0
		for _, s := range networkScore {
			if s[0] > s[1] {
				team1Sets++
			} else if s[1] > s[0] {
				team2Sets++
			}
		}
		return team1Sets > team2Sets
	}

	return false
}

// CalculateDuration 计算比赛时长 (毫秒):
// 1. starttime/endtime 都有且 end 晚于 start → 差值
// 2. durasi 字段为正 → 分钟转毫秒
// 3. 否则 0
func CalculateDuration(m *MatchRecord) int64 {
	if m.Starttime != nil && m.Endtime != nil && m.Endtime.After(*m.Starttime) {
		return m.Endtime.Sub(*m.Starttime).Milliseconds()
	}

	if m.Durasi > 0 {
		return int64(m.Durasi) * 60 * 1000
	}

	return 0
}

// Derive 把比赛记录映射成 BTP 推送格式。纯函数,字段全缺的记录
// 也会得到结构完整的推送 (0 时长 / 空矩阵 / team1_won=false)。
func Derive(m *MatchRecord) *BTPSubmission {
	networkScore := BuildNetworkScore(m)

	endTS := time.Now().UnixMilli()
	if m.Endtime != nil {
		endTS = m.Endtime.UnixMilli()
	}

	return &BTPSubmission{
		DurationMS:   CalculateDuration(m),
		EndTS:        endTS,
		NetworkScore: networkScore,
		Team1Won:     DetermineWinner(m, networkScore),
		Presses:      []interface{}{}, // 逐分按键数据这个来源拿不到

		CourtID:         m.Lapangan,
		PertandinganUID: m.UID,
		TournamentID:    m.TournamentUID,

		ShuttleCount: 0,

		MatchInfo: BTPMatchInfo{
			DrawUID:  m.Draw,
			EntryUID: m.Entry,
			Round:    m.Round,
			Team1UID: m.Team1,
			Team2UID: m.Team2,
			Status:   m.Status,
			Retired:  m.Retired == 1,
			Plandate: m.Plandate,
		},
	}
}
