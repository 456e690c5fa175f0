package db

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		inferred_scale_scores TEXT NULL,
		metabolic_profile TEXT NULL,
		primary_focus_topics TEXT NULL,
		sleep_hours DOUBLE NULL,
		stress_level DOUBLE NULL,
		energy_level DOUBLE NULL,
		updated_at DATETIME(6) NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id VARCHAR(64) NOT NULL PRIMARY KEY,
		tags TEXT NOT NULL,
		keywords TEXT NOT NULL,
		focus_topics TEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS inquiry_history (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		question_text TEXT NOT NULL,
		question_type VARCHAR(32) NOT NULL,
		priority VARCHAR(16) NOT NULL,
		data_gaps_addressed TEXT NOT NULL,
		user_response VARCHAR(255) NULL,
		responded_at DATETIME(6) NULL,
		delivery_method VARCHAR(16) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_inquiry_user_created (user_id, created_at),
		KEY idx_inquiry_user_responded (user_id, responded_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS daily_calibrations (
		user_id VARCHAR(64) NOT NULL,
		date CHAR(10) NOT NULL,
		sleep_hours DOUBLE NULL,
		stress_level DOUBLE NULL,
		exercise_duration DOUBLE NULL,
		mood_score DOUBLE NULL,
		meal_quality VARCHAR(32) NULL,
		water_intake VARCHAR(32) NULL,
		sleep_hours_at DATETIME(6) NULL,
		stress_level_at DATETIME(6) NULL,
		exercise_duration_at DATETIME(6) NULL,
		mood_score_at DATETIME(6) NULL,
		meal_quality_at DATETIME(6) NULL,
		water_intake_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (user_id, date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS user_activity_patterns (
		user_id VARCHAR(64) NOT NULL,
		day_of_week TINYINT NOT NULL,
		hour_of_day TINYINT NOT NULL,
		activity_score DOUBLE NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (user_id, day_of_week, hour_of_day)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS curated_feed_queue (
		user_id VARCHAR(64) NOT NULL,
		content_id VARCHAR(191) NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		url TEXT NOT NULL,
		source VARCHAR(32) NOT NULL,
		source_label VARCHAR(64) NOT NULL,
		language CHAR(2) NOT NULL,
		relevance_score DOUBLE NOT NULL,
		is_pushed TINYINT(1) NOT NULL DEFAULT 0,
		pushed_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (user_id, content_id),
		KEY idx_queue_user_score (user_id, is_pushed, relevance_score)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT NOT NULL PRIMARY KEY,
		inferred_scale_scores TEXT,
		metabolic_profile TEXT,
		primary_focus_topics TEXT,
		sleep_hours REAL,
		stress_level REAL,
		energy_level REAL,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id TEXT NOT NULL PRIMARY KEY,
		tags TEXT NOT NULL,
		keywords TEXT NOT NULL,
		focus_topics TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inquiry_history (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		question_text TEXT NOT NULL,
		question_type TEXT NOT NULL,
		priority TEXT NOT NULL,
		data_gaps_addressed TEXT NOT NULL,
		user_response TEXT,
		responded_at DATETIME,
		delivery_method TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inquiry_user_created ON inquiry_history (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_inquiry_user_responded ON inquiry_history (user_id, responded_at)`,
	`CREATE TABLE IF NOT EXISTS daily_calibrations (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		sleep_hours REAL,
		stress_level REAL,
		exercise_duration REAL,
		mood_score REAL,
		meal_quality TEXT,
		water_intake TEXT,
		sleep_hours_at DATETIME,
		stress_level_at DATETIME,
		exercise_duration_at DATETIME,
		mood_score_at DATETIME,
		meal_quality_at DATETIME,
		water_intake_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS user_activity_patterns (
		user_id TEXT NOT NULL,
		day_of_week INTEGER NOT NULL,
		hour_of_day INTEGER NOT NULL,
		activity_score REAL NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, day_of_week, hour_of_day)
	)`,
	`CREATE TABLE IF NOT EXISTS curated_feed_queue (
		user_id TEXT NOT NULL,
		content_id TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		url TEXT NOT NULL,
		source TEXT NOT NULL,
		source_label TEXT NOT NULL,
		language TEXT NOT NULL,
		relevance_score REAL NOT NULL,
		is_pushed INTEGER NOT NULL DEFAULT 0,
		pushed_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, content_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_queue_user_score ON curated_feed_queue (user_id, is_pushed, relevance_score)`,
}
