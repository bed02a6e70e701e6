package services

import (
	"livescore-service/logger"
)

// Dispatcher 把两条传输通道 (socket/AMQP) 送来的具名事件
// 汇入同一条处理流水线: 提取场地 → 记入历史 → 应用到状态存储。
type Dispatcher struct {
	store   *CourtStateStore
	history *EventHistory
}

// NewDispatcher 创建事件分发器
func NewDispatcher(store *CourtStateStore, history *EventHistory) *Dispatcher {
	return &Dispatcher{store: store, history: history}
}

// Dispatch 按到达顺序应用一条具名事件。
// 缺场地编号的事件归入 "unknown",照常记录,不算错误。
func (d *Dispatcher) Dispatch(event string, payload interface{}) {
	kind := KindOf(event)
	lapangan := ExtractCourt(payload)
	obj := UnwrapPayload(payload)

	d.history.Append(string(kind), payload)

	switch kind {
	case KindMatchStart:
		d.store.ApplyMatchStart(lapangan, obj, payload)
		logger.Printf("[Event] 🎯 playgame: score reset untuk match baru di court %s", lapangan)

	case KindScoreUpdate:
		d.store.ApplyScoreUpdate(lapangan, obj, payload)
		if snap, ok := d.store.Snapshot(lapangan); ok && snap.CurrentScore != nil {
			cs := snap.CurrentScore
			logger.Printf("[Event] 📊 court %s: Set1(%s-%s) Set2(%s-%s) Set3(%s-%s) Current(%s-%s)",
				lapangan,
				fmtScore(cs.Team1Set1), fmtScore(cs.Team2Set1),
				fmtScore(cs.Team1Set2), fmtScore(cs.Team2Set2),
				fmtScore(cs.Team1Set3), fmtScore(cs.Team2Set3),
				fmtScore(cs.Team1Point), fmtScore(cs.Team2Point))
		}

	case KindMatchFinish:
		d.store.ApplyMatchFinish(lapangan, payload)
		logger.Printf("[Event] 🏁 clearLapangan: match finished di court %s", lapangan)

	default:
		logger.Printf("[Event] 📨 message (court %s)", lapangan)
	}
}

func fmtScore(p *int) string {
	if p == nil {
		return "null"
	}
	return atomString(*p)
}
