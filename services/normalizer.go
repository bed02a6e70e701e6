package services

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EventKind 规范化后的事件类型
type EventKind string

const (
	KindMatchStart  EventKind = "playgame"
	KindScoreUpdate EventKind = "updatescore"
	KindMatchFinish EventKind = "clearLapangan"
	KindMessage     EventKind = "message"
)

// UnknownCourt 载荷里找不到场地编号时使用的兜底标识
const UnknownCourt = "unknown"

// KindOf 把线上各种事件名变体映射到四种规范类型。
// 记分端历史上用过多种大小写/命名 (updatescore/updateScore/addPoint 等)。
func KindOf(event string) EventKind {
	switch event {
	case "play", "playgame":
		return KindMatchStart
	case "updatescore", "updateScore", "addPoint":
		return KindScoreUpdate
	case "clearLapangan":
		return KindMatchFinish
	default:
		return KindMessage
	}
}

// 同一个逻辑字段在不同生产者之间有多种拼写。
// 解析顺序固定: 小驼峰 → 大写变体 → 下划线。
var (
	keysTeam1Set1  = []string{"team1set1", "team1Set1"}
	keysTeam2Set1  = []string{"team2set1", "team2Set1"}
	keysTeam1Set2  = []string{"team1set2", "team1Set2"}
	keysTeam2Set2  = []string{"team2set2", "team2Set2"}
	keysTeam1Set3  = []string{"team1set3", "team1Set3"}
	keysTeam2Set3  = []string{"team2set3", "team2Set3"}
	keysTeam1Point = []string{"team1point", "team1Point", "team1_point"}
	keysTeam2Point = []string{"team2point", "team2Point", "team2_point"}
	keysPemenang   = []string{"pemenang", "winner"}
	keysRetired    = []string{"retired"}
	keysDurasi     = []string{"durasi", "duration"}
)

// UnwrapPayload 取出事件对象本体。
// 载荷可能是对象本身,也可能是包了一层的单元素数组,两种都接受。
func UnwrapPayload(payload interface{}) map[string]interface{} {
	switch v := payload.(type) {
	case map[string]interface{}:
		return v
	case []interface{}:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]interface{}); ok {
				return obj
			}
		}
	}
	return nil
}

// ExtractCourt 从载荷提取场地编号: 先看对象本体,再看数组包装形式,
// 都没有则归入 "unknown",事件照常记录。
func ExtractCourt(payload interface{}) string {
	if obj, ok := payload.(map[string]interface{}); ok {
		if lap := atomString(obj["lapangan"]); lap != "" {
			return lap
		}
	}
	if obj := UnwrapPayload(payload); obj != nil {
		if lap := atomString(obj["lapangan"]); lap != "" {
			return lap
		}
	}
	return UnknownCourt
}

// resolveInt 按候选键顺序解析数值字段,取第一个能转成数值的,
// 坏值继续往后试,全部缺失或不可用时回退到 prev
func resolveInt(obj map[string]interface{}, keys []string, prev *int) *int {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if n, ok := atomInt(v); ok {
			return &n
		}
	}
	return prev
}

// atomInt JSON 解码出的数值可能是 float64/json.Number/字符串
func atomInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// atomString 把场地编号之类的标量转成字符串 (数字编号也常见)
func atomString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

// StartScore 从 playgame 载荷重建比分快照,缺失字段一律归零。
// 新比赛必须无条件重置,旧比赛的比分绝不能带进来。
func StartScore(obj map[string]interface{}) *Score {
	return &Score{
		Team1Set1:  orZero(resolveInt(obj, keysTeam1Set1, nil)),
		Team2Set1:  orZero(resolveInt(obj, keysTeam2Set1, nil)),
		Team1Set2:  orZero(resolveInt(obj, keysTeam1Set2, nil)),
		Team2Set2:  orZero(resolveInt(obj, keysTeam2Set2, nil)),
		Team1Set3:  orZero(resolveInt(obj, keysTeam1Set3, nil)),
		Team2Set3:  orZero(resolveInt(obj, keysTeam2Set3, nil)),
		Team1Point: orZero(resolveInt(obj, keysTeam1Point, nil)),
		Team2Point: orZero(resolveInt(obj, keysTeam2Point, nil)),
		Pemenang:   orZero(resolveInt(obj, keysPemenang, nil)),
		Retired:    orZero(resolveInt(obj, keysRetired, nil)),
		Durasi:     orZero(resolveInt(obj, keysDurasi, nil)),
	}
}

// PrimeScore 从 joinRoomWasit 返回的 match 数据初始化比分。
// 握手数据只带局分和当前得分,胜负/退赛/时长字段保持未知。
func PrimeScore(obj map[string]interface{}) *Score {
	return &Score{
		Team1Set1:  orZero(resolveInt(obj, keysTeam1Set1, nil)),
		Team2Set1:  orZero(resolveInt(obj, keysTeam2Set1, nil)),
		Team1Set2:  orZero(resolveInt(obj, keysTeam1Set2, nil)),
		Team2Set2:  orZero(resolveInt(obj, keysTeam2Set2, nil)),
		Team1Set3:  orZero(resolveInt(obj, keysTeam1Set3, nil)),
		Team2Set3:  orZero(resolveInt(obj, keysTeam2Set3, nil)),
		Team1Point: orZero(resolveInt(obj, keysTeam1Point, nil)),
		Team2Point: orZero(resolveInt(obj, keysTeam2Point, nil)),
		Pemenang:   resolveInt(obj, keysPemenang, nil),
		Retired:    resolveInt(obj, keysRetired, nil),
		Durasi:     resolveInt(obj, keysDurasi, nil),
	}
}

// ReconcileScore 把增量比分合并进已有快照。
// 只上报部分字段的更新不能覆盖已知字段,未上报的保留原值。
func ReconcileScore(obj map[string]interface{}, prev *Score) *Score {
	var p Score
	if prev != nil {
		p = *prev
	}
	return &Score{
		Team1Set1:  resolveInt(obj, keysTeam1Set1, p.Team1Set1),
		Team2Set1:  resolveInt(obj, keysTeam2Set1, p.Team2Set1),
		Team1Set2:  resolveInt(obj, keysTeam1Set2, p.Team1Set2),
		Team2Set2:  resolveInt(obj, keysTeam2Set2, p.Team2Set2),
		Team1Set3:  resolveInt(obj, keysTeam1Set3, p.Team1Set3),
		Team2Set3:  resolveInt(obj, keysTeam2Set3, p.Team2Set3),
		Team1Point: resolveInt(obj, keysTeam1Point, p.Team1Point),
		Team2Point: resolveInt(obj, keysTeam2Point, p.Team2Point),
		Pemenang:   resolveInt(obj, keysPemenang, p.Pemenang),
		Retired:    resolveInt(obj, keysRetired, p.Retired),
		Durasi:     resolveInt(obj, keysDurasi, p.Durasi),
	}
}

func orZero(p *int) *int {
	if p != nil {
		return p
	}
	zero := 0
	return &zero
}
