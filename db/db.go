package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"adaptive_coach/config"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect SQL方言
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// Open 按配置打开数据库连接池
func Open(cfg *config.Config) (*sql.DB, Dialect, error) {
	switch Dialect(cfg.DB.Driver) {
	case SQLite:
		conn, err := OpenSQLite(cfg.DB.DSN)
		return conn, SQLite, err
	case MySQL:
		conn, err := openMySQL(cfg)
		return conn, MySQL, err
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}
}

func openMySQL(cfg *config.Config) (*sql.DB, error) {
	conn, err := sql.Open("mysql", cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	// 从配置读取连接池参数，提供默认值保护
	maxOpenConns := cfg.DB.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 50 // 默认最大连接数
	}

	maxIdleConns := cfg.DB.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 10 // 默认最大空闲连接数
	}

	connMaxLifetime := cfg.DB.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 60 // 默认连接最大生命周期（分钟）
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// OpenSQLite 打开sqlite数据库。sqlite只允许单连接写入，内存库也依赖单连接共享数据
func OpenSQLite(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate 创建业务表（已存在则跳过）
func Migrate(ctx context.Context, conn *sql.DB, dialect Dialect) error {
	stmts := mysqlSchema
	if dialect == SQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
