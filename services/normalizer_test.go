package services

import "testing"

func intPtr(n int) *int { return &n }

func TestKindOf(t *testing.T) {
	cases := map[string]EventKind{
		"play":          KindMatchStart,
		"playgame":      KindMatchStart,
		"updatescore":   KindScoreUpdate,
		"updateScore":   KindScoreUpdate,
		"addPoint":      KindScoreUpdate,
		"clearLapangan": KindMatchFinish,
		"message":       KindMessage,
		"somethingelse": KindMessage,
	}

	for event, want := range cases {
		if got := KindOf(event); got != want {
			t.Errorf("Expected KindOf(%q) to be %q, got %q", event, want, got)
		}
	}
}

func TestUnwrapPayload(t *testing.T) {
	obj := map[string]interface{}{"lapangan": "3"}

	if got := UnwrapPayload(obj); got == nil {
		t.Error("Expected plain object to unwrap to itself, got nil")
	}

	wrapped := []interface{}{obj}
	if got := UnwrapPayload(wrapped); got == nil || got["lapangan"] != "3" {
		t.Errorf("Expected wrapped object to unwrap to element 0, got %v", got)
	}

	if got := UnwrapPayload("not an object"); got != nil {
		t.Errorf("Expected non-object payload to unwrap to nil, got %v", got)
	}
	if got := UnwrapPayload([]interface{}{}); got != nil {
		t.Errorf("Expected empty array to unwrap to nil, got %v", got)
	}
}

func TestExtractCourt(t *testing.T) {
	obj := map[string]interface{}{"lapangan": "7"}

	if got := ExtractCourt(obj); got != "7" {
		t.Errorf("Expected court '7' from object, got %q", got)
	}

	if got := ExtractCourt([]interface{}{obj}); got != "7" {
		t.Errorf("Expected court '7' from wrapped object, got %q", got)
	}

	// 数字编号也要能提取
	if got := ExtractCourt(map[string]interface{}{"lapangan": float64(4)}); got != "4" {
		t.Errorf("Expected numeric court to extract as '4', got %q", got)
	}

	if got := ExtractCourt(map[string]interface{}{"team1point": float64(3)}); got != UnknownCourt {
		t.Errorf("Expected missing court to classify as %q, got %q", UnknownCourt, got)
	}
	if got := ExtractCourt(nil); got != UnknownCourt {
		t.Errorf("Expected nil payload to classify as %q, got %q", UnknownCourt, got)
	}
}

func TestResolveIntSpellingPriority(t *testing.T) {
	// 小驼峰优先于大写变体,再优先于下划线
	obj := map[string]interface{}{
		"team1point":  float64(3),
		"team1Point":  float64(9),
		"team1_point": float64(11),
	}
	if got := resolveInt(obj, keysTeam1Point, nil); got == nil || *got != 3 {
		t.Errorf("Expected lower-camel spelling to win with 3, got %v", got)
	}

	obj = map[string]interface{}{
		"team1Point":  float64(9),
		"team1_point": float64(11),
	}
	if got := resolveInt(obj, keysTeam1Point, nil); got == nil || *got != 9 {
		t.Errorf("Expected capitalized spelling to win with 9, got %v", got)
	}

	obj = map[string]interface{}{"team1_point": float64(11)}
	if got := resolveInt(obj, keysTeam1Point, nil); got == nil || *got != 11 {
		t.Errorf("Expected snake-case spelling to resolve to 11, got %v", got)
	}
}

func TestResolveIntFallback(t *testing.T) {
	prev := intPtr(5)

	if got := resolveInt(map[string]interface{}{}, keysTeam2Point, prev); got != prev {
		t.Errorf("Expected fallback to previous value 5, got %v", got)
	}

	// JSON null 不算有值
	obj := map[string]interface{}{"team2point": nil}
	if got := resolveInt(obj, keysTeam2Point, prev); got != prev {
		t.Errorf("Expected null value to fall back to previous value, got %v", got)
	}

	if got := resolveInt(nil, keysTeam2Point, nil); got != nil {
		t.Errorf("Expected nil object with no previous value to resolve to nil, got %v", got)
	}
}

func TestResolveIntSkipsUncoercibleValues(t *testing.T) {
	// 首选拼写是坏值时要继续试后面的变体,不能直接回退
	obj := map[string]interface{}{
		"team1point": "abc",
		"team1Point": float64(9),
	}
	if got := resolveInt(obj, keysTeam1Point, nil); got == nil || *got != 9 {
		t.Errorf("Expected bad value to be skipped in favor of 9, got %v", got)
	}

	// 全部都是坏值才回退到 prev
	obj = map[string]interface{}{
		"team1point": "abc",
		"team1Point": "def",
	}
	prev := intPtr(5)
	if got := resolveInt(obj, keysTeam1Point, prev); got != prev {
		t.Errorf("Expected fallback to previous value 5, got %v", got)
	}
}

func TestAtomIntCoercion(t *testing.T) {
	if n, ok := atomInt(float64(21)); !ok || n != 21 {
		t.Errorf("Expected float64 21 to coerce, got %d (%v)", n, ok)
	}
	if n, ok := atomInt("15"); !ok || n != 15 {
		t.Errorf("Expected string '15' to coerce, got %d (%v)", n, ok)
	}
	if _, ok := atomInt("abc"); ok {
		t.Error("Expected non-numeric string to fail coercion")
	}
	if _, ok := atomInt(nil); ok {
		t.Error("Expected nil to fail coercion")
	}
}

func TestStartScoreDefaultsToZero(t *testing.T) {
	score := StartScore(map[string]interface{}{
		"team1set1": float64(21),
		"team2Set1": float64(15),
	})

	if score.Team1Set1 == nil || *score.Team1Set1 != 21 {
		t.Errorf("Expected team1set1 21, got %v", score.Team1Set1)
	}
	if score.Team2Set1 == nil || *score.Team2Set1 != 15 {
		t.Errorf("Expected team2set1 15 via capitalized variant, got %v", score.Team2Set1)
	}
	if score.Team1Point == nil || *score.Team1Point != 0 {
		t.Errorf("Expected missing team1point to default to 0, got %v", score.Team1Point)
	}
	if score.Pemenang == nil || *score.Pemenang != 0 {
		t.Errorf("Expected missing pemenang to default to 0, got %v", score.Pemenang)
	}
}

func TestReconcileScoreKeepsUnreportedFields(t *testing.T) {
	prev := &Score{
		Team1Point: intPtr(2),
		Team2Point: intPtr(5),
	}

	next := ReconcileScore(map[string]interface{}{"team1point": float64(3)}, prev)

	if next.Team1Point == nil || *next.Team1Point != 3 {
		t.Errorf("Expected team1point 3, got %v", next.Team1Point)
	}
	if next.Team2Point == nil || *next.Team2Point != 5 {
		t.Errorf("Expected unreported team2point to stay 5, got %v", next.Team2Point)
	}
	if next.Team1Set1 != nil {
		t.Errorf("Expected never-reported team1set1 to stay null, got %v", next.Team1Set1)
	}
}
