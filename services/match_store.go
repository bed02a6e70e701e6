package services

import (
	"database/sql"
	"errors"
	"fmt"
)

// MatchStore 持久化比赛记录的查询入口,只服务 BTP 推送路径
type MatchStore struct {
	db *sql.DB
}

// NewMatchStore 创建比赛记录存储
func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

// FetchByUID 按 uid 取回比赛记录,不存在时返回 ErrMatchNotFound
func (s *MatchStore) FetchByUID(uid string) (*MatchRecord, error) {
	query := `
		SELECT uid, lapangan, tournament_uid, draw, entry, round,
		       team1, team2, menang, pemenang, retired, status, plandate,
		       team1set1, team2set1, team1set2, team2set2, team1set3, team2set3,
		       team1set4, team2set4, team1set5, team2set5,
		       durasi, starttime, endtime
		FROM pertandingan
		WHERE uid = $1
	`

	var (
		lapangan      sql.NullString
		tournamentUID sql.NullString
		draw          sql.NullString
		entry         sql.NullString
		round         sql.NullString
		team1         sql.NullString
		team2         sql.NullString
		menang        sql.NullString
		pemenang      sql.NullInt64
		retired       sql.NullInt64
		status        sql.NullString
		plandate      sql.NullString
		sets          [10]sql.NullInt64
		durasi        sql.NullInt64
		starttime     sql.NullTime
		endtime       sql.NullTime
	)

	m := &MatchRecord{}

	err := s.db.QueryRow(query, uid).Scan(
		&m.UID, &lapangan, &tournamentUID, &draw, &entry, &round,
		&team1, &team2, &menang, &pemenang, &retired, &status, &plandate,
		&sets[0], &sets[1], &sets[2], &sets[3], &sets[4], &sets[5],
		&sets[6], &sets[7], &sets[8], &sets[9],
		&durasi, &starttime, &endtime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", uid, err)
	}

	m.Lapangan = lapangan.String
	m.TournamentUID = tournamentUID.String
	m.Draw = draw.String
	m.Entry = entry.String
	m.Round = round.String
	m.Team1 = team1.String
	m.Team2 = team2.String
	m.Menang = menang.String
	if pemenang.Valid {
		p := int(pemenang.Int64)
		m.Pemenang = &p
	}
	m.Retired = int(retired.Int64)
	m.Status = status.String
	m.Plandate = plandate.String

	m.Team1Set1 = int(sets[0].Int64)
	m.Team2Set1 = int(sets[1].Int64)
	m.Team1Set2 = int(sets[2].Int64)
	m.Team2Set2 = int(sets[3].Int64)
	m.Team1Set3 = int(sets[4].Int64)
	m.Team2Set3 = int(sets[5].Int64)
	m.Team1Set4 = int(sets[6].Int64)
	m.Team2Set4 = int(sets[7].Int64)
	m.Team1Set5 = int(sets[8].Int64)
	m.Team2Set5 = int(sets[9].Int64)

	m.Durasi = int(durasi.Int64)
	if starttime.Valid {
		t := starttime.Time
		m.Starttime = &t
	}
	if endtime.Valid {
		t := endtime.Time
		m.Endtime = &t
	}

	return m, nil
}
