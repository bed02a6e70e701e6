package services

import "testing"

func playingCourtState() *CourtState {
	return &CourtState{
		Status: StatusPlaying,
		MatchInfo: map[string]interface{}{
			"round": "F",
			"nr":    float64(12),
			"kelompok_pertandingan": map[string]interface{}{
				"nama": "Kejuaraan Nasional",
			},
			"team1": map[string]interface{}{
				"displayName1": "A. Tanjung",
				"firstname1":   "Andi",
				"lastname1":    "Tanjung",
				"player1_club": "PB Jaya",
				"displayName2": "B. Wijaya",
			},
			"team2": map[string]interface{}{
				"lastname1":  "Susanto",
				"firstname1": "Rudi",
			},
			"team1set1": float64(7),
			"team2set1": float64(9),
		},
		CurrentScore: &Score{
			Team1Set1:  intPtr(21),
			Team2Set1:  intPtr(15),
			Team1Point: intPtr(11),
			Team2Point: intPtr(8),
		},
		LastUpdate: "02 Agu 2025, 15:00:00 WIB",
	}
}

func TestFlatScoreboardPriority(t *testing.T) {
	flat := BuildFlatScoreboard("3", playingCourtState())

	// currentScore 优先于 matchInfo
	if flat.Team1Set1 != 21 || flat.Team2Set1 != 15 {
		t.Errorf("Expected currentScore values 21-15, got %d-%d", flat.Team1Set1, flat.Team2Set1)
	}
	// currentScore 缺的字段回退到 matchInfo,再缺归零
	if flat.Team1Set2 != 0 || flat.Team2Set2 != 0 {
		t.Errorf("Expected unplayed set2 to be 0-0, got %d-%d", flat.Team1Set2, flat.Team2Set2)
	}
	if flat.Team1Current != 11 || flat.Team2Current != 8 {
		t.Errorf("Expected current points 11-8, got %d-%d", flat.Team1Current, flat.Team2Current)
	}

	if flat.TournamentName != "Kejuaraan Nasional" {
		t.Errorf("Expected tournament name, got %q", flat.TournamentName)
	}
	if flat.MatchNumber != "12" {
		t.Errorf("Expected numeric nr rendered as '12', got %q", flat.MatchNumber)
	}
	if flat.Team1Name != "A. Tanjung" {
		t.Errorf("Expected displayName1 for team1_name, got %q", flat.Team1Name)
	}
	// displayName1 缺失时回退 lastname1
	if flat.Team2Name != "Susanto" {
		t.Errorf("Expected lastname1 fallback for team2_name, got %q", flat.Team2Name)
	}
	// 双打第二人缺失时渲染为空串,不是省略
	if flat.Team2Player2Name != "" {
		t.Errorf("Expected empty team2_player2_name, got %q", flat.Team2Player2Name)
	}
}

func TestFlatScoreboardMatchInfoFallback(t *testing.T) {
	st := playingCourtState()
	st.CurrentScore = nil

	flat := BuildFlatScoreboard("3", st)
	if flat.Team1Set1 != 7 || flat.Team2Set1 != 9 {
		t.Errorf("Expected matchInfo fallback 7-9, got %d-%d", flat.Team1Set1, flat.Team2Set1)
	}
	if flat.Team1Current != 0 {
		t.Errorf("Expected current points to default to 0, got %d", flat.Team1Current)
	}
}

func TestFlatScoreboardEmptyState(t *testing.T) {
	flat := BuildFlatScoreboard("9", &CourtState{})

	if flat.Status != "unknown" {
		t.Errorf("Expected status 'unknown' for empty state, got %q", flat.Status)
	}
	if flat.Team1Set1 != 0 || flat.Winner != 0 || flat.Duration != 0 {
		t.Error("Expected all score fields to default to 0")
	}
	if flat.LastUpdate == "" {
		t.Error("Expected last_update to be filled in")
	}
}

// 单层 JSON 和 XML 两种投影必须报告完全相同的比分
func TestFlatAndXMLScoreboardsAgree(t *testing.T) {
	st := playingCourtState()

	flat := BuildFlatScoreboard("3", st)
	board := BuildXMLScoreboard("3", st)

	pairs := []struct {
		name string
		flat int
		xml  int
	}{
		{"team1_set1", flat.Team1Set1, board.Scores.Team1Set1},
		{"team2_set1", flat.Team2Set1, board.Scores.Team2Set1},
		{"team1_set2", flat.Team1Set2, board.Scores.Team1Set2},
		{"team2_set2", flat.Team2Set2, board.Scores.Team2Set2},
		{"team1_set3", flat.Team1Set3, board.Scores.Team1Set3},
		{"team2_set3", flat.Team2Set3, board.Scores.Team2Set3},
		{"team1_current", flat.Team1Current, board.Scores.Team1Current},
		{"team2_current", flat.Team2Current, board.Scores.Team2Current},
		{"winner", flat.Winner, board.Metadata.Winner},
		{"retired", flat.Retired, board.Metadata.Retired},
		{"duration", flat.Duration, board.Metadata.Duration},
	}
	for _, p := range pairs {
		if p.flat != p.xml {
			t.Errorf("Expected %s to agree, flat=%d xml=%d", p.name, p.flat, p.xml)
		}
	}

	if board.Court != flat.Court || board.Status != flat.Status {
		t.Error("Expected court/status to agree between projections")
	}
	if board.Team1.Name != flat.Team1Name || board.Team2.Name != flat.Team2Name {
		t.Error("Expected team names to agree between projections")
	}
}

func TestDebugView(t *testing.T) {
	history := NewEventHistory()
	for i := 0; i < 7; i++ {
		history.Append("updatescore", map[string]interface{}{
			"lapangan":   "3",
			"team1point": float64(i),
		})
	}
	history.Append("updatescore", map[string]interface{}{"lapangan": "4"})

	st := playingCourtState()
	st.PlayData = map[string]interface{}{"lapangan": "3"}

	view := BuildDebugView("3", st, history)

	if !view.DebugInfo.HasMatchInfo || !view.DebugInfo.HasCurrentScore || !view.DebugInfo.HasPlayData {
		t.Errorf("Expected presence flags set, got %+v", view.DebugInfo)
	}
	if view.DebugInfo.HasFinalScore {
		t.Error("Expected has_finalScore false")
	}

	// 只取该场地最近 5 条
	if len(view.RecentEvents) != 5 {
		t.Fatalf("Expected 5 recent events, got %d", len(view.RecentEvents))
	}
	for _, e := range view.RecentEvents {
		if ExtractCourt(e.Data) != "3" {
			t.Errorf("Expected only court 3 events, got %v", e.Data)
		}
	}
	if view.PlayDataPreview == "" {
		t.Error("Expected playData preview to be set")
	}
}

func TestEventHistoryRecent(t *testing.T) {
	history := NewEventHistory()
	for i := 0; i < 150; i++ {
		history.Append("message", map[string]interface{}{"n": float64(i)})
	}

	if got := len(history.Recent(0)); got != DefaultHistoryLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultHistoryLimit, got)
	}
	if got := len(history.Recent(10)); got != 10 {
		t.Errorf("Expected 10 entries, got %d", got)
	}
	if got := len(history.Recent(500)); got != 150 {
		t.Errorf("Expected all 150 entries, got %d", got)
	}

	history.Clear()
	if history.Len() != 0 {
		t.Errorf("Expected empty history after clear, got %d", history.Len())
	}
}
