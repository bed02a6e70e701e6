package services

import (
	"encoding/json"
	"encoding/xml"
)

// FlatScoreboard vMix 友好的单层结构,比分字段解析优先级:
// currentScore → matchInfo → 0。
type FlatScoreboard struct {
	Court  string `json:"court"`
	Status string `json:"status"`

	TournamentName string `json:"tournament_name"`
	Round          string `json:"round"`
	MatchNumber    string `json:"match_number"`

	Team1Name        string `json:"team1_name"`
	Team1Firstname   string `json:"team1_firstname"`
	Team1Lastname    string `json:"team1_lastname"`
	Team1Club        string `json:"team1_club"`
	Team1Player2Name string `json:"team1_player2_name"`

	Team2Name        string `json:"team2_name"`
	Team2Firstname   string `json:"team2_firstname"`
	Team2Lastname    string `json:"team2_lastname"`
	Team2Club        string `json:"team2_club"`
	Team2Player2Name string `json:"team2_player2_name"`

	Team1Set1 int `json:"team1_set1"`
	Team2Set1 int `json:"team2_set1"`
	Team1Set2 int `json:"team1_set2"`
	Team2Set2 int `json:"team2_set2"`
	Team1Set3 int `json:"team1_set3"`
	Team2Set3 int `json:"team2_set3"`

	Team1Current int `json:"team1_current"`
	Team2Current int `json:"team2_current"`

	Winner   int `json:"winner"`
	Retired  int `json:"retired"`
	Duration int `json:"duration"`

	LastUpdate string `json:"last_update"`
	UpdateTime string `json:"update_time"`
}

// XMLTeam 一方队伍的固定标签集,缺失字符串渲染为空标签而不是省略
type XMLTeam struct {
	Name        string `xml:"name"`
	Firstname   string `xml:"firstname"`
	Lastname    string `xml:"lastname"`
	Club        string `xml:"club"`
	Player2Name string `xml:"player2_name"`
}

// XMLScores 各局比分
type XMLScores struct {
	Team1Set1    int `xml:"team1_set1"`
	Team2Set1    int `xml:"team2_set1"`
	Team1Set2    int `xml:"team1_set2"`
	Team2Set2    int `xml:"team2_set2"`
	Team1Set3    int `xml:"team1_set3"`
	Team2Set3    int `xml:"team2_set3"`
	Team1Current int `xml:"team1_current"`
	Team2Current int `xml:"team2_current"`
}

// XMLMetadata 胜负/退赛/时长等元数据
type XMLMetadata struct {
	Winner     int    `xml:"winner"`
	Retired    int    `xml:"retired"`
	Duration   int    `xml:"duration"`
	LastUpdate string `xml:"last_update"`
	UpdateTime string `xml:"update_time"`
}

// XMLScoreboard vMix XML 数据源格式
type XMLScoreboard struct {
	XMLName     xml.Name    `xml:"match"`
	Court       string      `xml:"court"`
	Status      string      `xml:"status"`
	Tournament  string      `xml:"tournament"`
	Round       string      `xml:"round"`
	MatchNumber string      `xml:"match_number"`
	Team1       XMLTeam     `xml:"team1"`
	Team2       XMLTeam     `xml:"team2"`
	Scores      XMLScores   `xml:"scores"`
	Metadata    XMLMetadata `xml:"metadata"`
}

// DebugInfo 各子结构的存在标志
type DebugInfo struct {
	Status          string `json:"status"`
	HasMatchInfo    bool   `json:"has_matchInfo"`
	HasCurrentScore bool   `json:"has_currentScore"`
	HasPlayData     bool   `json:"has_playData"`
	HasFinalScore   bool   `json:"has_finalScore"`
	LastUpdate      string `json:"lastUpdate"`
}

// DebugView 内部数据结构的调试投影
type DebugView struct {
	DebugInfo       DebugInfo              `json:"debug_info"`
	MatchInfo       map[string]interface{} `json:"matchInfo"`
	CurrentScore    *Score                 `json:"currentScore"`
	FinalScore      *Score                 `json:"finalScore"`
	PlayDataPreview string                 `json:"playData_preview,omitempty"`
	RecentEvents    []EventEntry           `json:"recent_events"`
}

// BuildFlatScoreboard 从场地快照生成单层记分板。
// 状态记录本身就是快照,这里不做任何缓存。
func BuildFlatScoreboard(lapangan string, st *CourtState) *FlatScoreboard {
	matchInfo := st.MatchInfo
	if matchInfo == nil {
		matchInfo = UnwrapPayload(st.PlayData)
	}

	team1 := subMap(matchInfo, "team1")
	team2 := subMap(matchInfo, "team2")

	cs := st.CurrentScore
	if cs == nil {
		cs = &Score{}
	}

	status := st.Status
	if status == "" {
		status = "unknown"
	}
	lastUpdate := st.LastUpdate
	if lastUpdate == "" {
		lastUpdate = WIBTimestamp()
	}

	return &FlatScoreboard{
		Court:  lapangan,
		Status: status,

		TournamentName: stringField(subMap(matchInfo, "kelompok_pertandingan"), "nama"),
		Round:          stringField(matchInfo, "round"),
		MatchNumber:    stringField(matchInfo, "nr"),

		Team1Name:        firstString(team1, "displayName1", "lastname1"),
		Team1Firstname:   stringField(team1, "firstname1"),
		Team1Lastname:    stringField(team1, "lastname1"),
		Team1Club:        stringField(team1, "player1_club"),
		Team1Player2Name: firstString(team1, "displayName2", "lastname2"),

		Team2Name:        firstString(team2, "displayName1", "lastname1"),
		Team2Firstname:   stringField(team2, "firstname1"),
		Team2Lastname:    stringField(team2, "lastname1"),
		Team2Club:        stringField(team2, "player1_club"),
		Team2Player2Name: firstString(team2, "displayName2", "lastname2"),

		Team1Set1: scoreOr(cs.Team1Set1, matchInfo, keysTeam1Set1),
		Team2Set1: scoreOr(cs.Team2Set1, matchInfo, keysTeam2Set1),
		Team1Set2: scoreOr(cs.Team1Set2, matchInfo, keysTeam1Set2),
		Team2Set2: scoreOr(cs.Team2Set2, matchInfo, keysTeam2Set2),
		Team1Set3: scoreOr(cs.Team1Set3, matchInfo, keysTeam1Set3),
		Team2Set3: scoreOr(cs.Team2Set3, matchInfo, keysTeam2Set3),

		Team1Current: intOr(cs.Team1Point, 0),
		Team2Current: intOr(cs.Team2Point, 0),

		Winner:   scoreOr(cs.Pemenang, matchInfo, keysPemenang),
		Retired:  scoreOr(cs.Retired, matchInfo, keysRetired),
		Duration: scoreOr(cs.Durasi, matchInfo, keysDurasi),

		LastUpdate: lastUpdate,
		UpdateTime: WIBTimestampShort(),
	}
}

// BuildXMLScoreboard 生成 XML 记分板。字段集与单层 JSON 完全一致,
// 两种投影从同一个解析结果映射,比分值不可能出现分歧。
func BuildXMLScoreboard(lapangan string, st *CourtState) *XMLScoreboard {
	flat := BuildFlatScoreboard(lapangan, st)

	return &XMLScoreboard{
		Court:       flat.Court,
		Status:      flat.Status,
		Tournament:  flat.TournamentName,
		Round:       flat.Round,
		MatchNumber: flat.MatchNumber,
		Team1: XMLTeam{
			Name:        flat.Team1Name,
			Firstname:   flat.Team1Firstname,
			Lastname:    flat.Team1Lastname,
			Club:        flat.Team1Club,
			Player2Name: flat.Team1Player2Name,
		},
		Team2: XMLTeam{
			Name:        flat.Team2Name,
			Firstname:   flat.Team2Firstname,
			Lastname:    flat.Team2Lastname,
			Club:        flat.Team2Club,
			Player2Name: flat.Team2Player2Name,
		},
		Scores: XMLScores{
			Team1Set1:    flat.Team1Set1,
			Team2Set1:    flat.Team2Set1,
			Team1Set2:    flat.Team1Set2,
			Team2Set2:    flat.Team2Set2,
			Team1Set3:    flat.Team1Set3,
			Team2Set3:    flat.Team2Set3,
			Team1Current: flat.Team1Current,
			Team2Current: flat.Team2Current,
		},
		Metadata: XMLMetadata{
			Winner:     flat.Winner,
			Retired:    flat.Retired,
			Duration:   flat.Duration,
			LastUpdate: flat.LastUpdate,
			UpdateTime: flat.UpdateTime,
		},
	}
}

// BuildDebugView 生成调试投影: 子结构存在标志 + 该场地最近 5 条事件
func BuildDebugView(lapangan string, st *CourtState, history *EventHistory) *DebugView {
	view := &DebugView{
		DebugInfo: DebugInfo{
			Status:          st.Status,
			HasMatchInfo:    st.MatchInfo != nil,
			HasCurrentScore: st.CurrentScore != nil,
			HasPlayData:     st.PlayData != nil,
			HasFinalScore:   st.FinalScore != nil,
			LastUpdate:      st.LastUpdate,
		},
		MatchInfo:    st.MatchInfo,
		CurrentScore: st.CurrentScore,
		FinalScore:   st.FinalScore,
		RecentEvents: history.ForCourt(lapangan, 5),
	}

	if st.PlayData != nil {
		if raw, err := json.Marshal(st.PlayData); err == nil {
			preview := string(raw)
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			view.PlayDataPreview = preview
		}
	}

	return view
}

// scoreOr currentScore 值优先,其次 matchInfo 里的同名字段,最后 0
func scoreOr(cur *int, matchInfo map[string]interface{}, keys []string) int {
	if cur != nil {
		return *cur
	}
	if v := resolveInt(matchInfo, keys, nil); v != nil {
		return *v
	}
	return 0
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

func subMap(obj map[string]interface{}, key string) map[string]interface{} {
	if obj == nil {
		return nil
	}
	m, _ := obj[key].(map[string]interface{})
	return m
}

func stringField(obj map[string]interface{}, key string) string {
	if obj == nil {
		return ""
	}
	return atomString(obj[key])
}

func firstString(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := stringField(obj, k); s != "" {
			return s
		}
	}
	return ""
}
