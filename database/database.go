package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect 连接到数据库
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 设置连接池
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate 运行数据库迁移
func Migrate(db *sql.DB) error {
	migrations := []string{
		// 比赛记录表 (BTP 推送数据来源)
		`CREATE TABLE IF NOT EXISTS pertandingan (
			id BIGSERIAL PRIMARY KEY,
			uid VARCHAR(100) UNIQUE NOT NULL,
			lapangan VARCHAR(50),
			tournament_uid VARCHAR(100),
			draw VARCHAR(100),
			entry VARCHAR(100),
			round VARCHAR(50),
			nr VARCHAR(50),
			team1 VARCHAR(100),
			team2 VARCHAR(100),
			menang VARCHAR(100),
			pemenang INTEGER,
			retired INTEGER DEFAULT 0,
			status VARCHAR(50),
			plandate VARCHAR(50),
			team1set1 INTEGER DEFAULT 0,
			team2set1 INTEGER DEFAULT 0,
			team1set2 INTEGER DEFAULT 0,
			team2set2 INTEGER DEFAULT 0,
			team1set3 INTEGER DEFAULT 0,
			team2set3 INTEGER DEFAULT 0,
			team1set4 INTEGER DEFAULT 0,
			team2set4 INTEGER DEFAULT 0,
			team1set5 INTEGER DEFAULT 0,
			team2set5 INTEGER DEFAULT 0,
			durasi INTEGER DEFAULT 0,
			starttime TIMESTAMP,
			endtime TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pertandingan_uid ON pertandingan(uid)`,
		`CREATE INDEX IF NOT EXISTS idx_pertandingan_lapangan ON pertandingan(lapangan)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
