package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// YouTubeChannel 订阅的 YouTube 频道
type YouTubeChannel struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Topics []string `yaml:"topics"`
}

// SourcesConfig 内容源配置
type SourcesConfig struct {
	TimeoutSec int `yaml:"timeout_sec"` // 单个内容源的超时时间，单位：秒
	PubMed     struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Limit   int    `yaml:"limit"`
	} `yaml:"pubmed"`
	SemanticScholar struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Limit   int    `yaml:"limit"`
	} `yaml:"semantic_scholar"`
	YouTube struct {
		Enabled    bool             `yaml:"enabled"`
		FeedURL    string           `yaml:"feed_url"` // 频道 RSS 地址前缀，后接 channel_id
		PerChannel int              `yaml:"per_channel"`
		Channels   []YouTubeChannel `yaml:"channels"`
	} `yaml:"youtube"`
	Trending struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"trending"`
	Knowledge struct {
		Enabled        bool     `yaml:"enabled"`
		URL            string   `yaml:"url"`
		APIKey         string   `yaml:"api_key"`
		KnowledgeIDs   []string `yaml:"kb_ids"`
		TopK           int      `yaml:"topk"`
		Threshold      float32  `yaml:"threshold"`
		DocURLTemplate string   `yaml:"doc_url_template"` // 文档链接模板，%s 替换为 document_id
	} `yaml:"knowledge"`
}

// InquiryConfig 主动问询配置
type InquiryConfig struct {
	CooldownMin          int            `yaml:"cooldown_min"`           // 回答后的冷却时间（分钟）
	CandidateMinScore    float64        `yaml:"candidate_min_score"`    // 附带推荐内容的最低相关度
	Timezone             string         `yaml:"timezone"`               // 计算“今天”所用的时区
	DefaultStaleHours    int            `yaml:"default_stale_hours"`    // 信号过期时间（小时）
	StaleHours           map[string]int `yaml:"stale_hours"`            // 按字段覆盖过期时间
	ActivityInitialScore float64        `yaml:"activity_initial_score"` // 活跃度首次写入值
	ActivityAlpha        float64        `yaml:"activity_alpha"`         // 活跃度增量系数
}

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	ExternalAPI struct {
		InquiryPushURL string `yaml:"inquiry_push_url"`
		APIKey         string `yaml:"api_key"`
	} `yaml:"external_api"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	DB struct {
		Driver          string `yaml:"driver"` // mysql 或 sqlite
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		ParseTime       bool   `yaml:"parse_time"`
		SQLitePath      string `yaml:"sqlite_path"`
		DSN             string `yaml:"-"`                 // 不从配置文件读取，而是在加载后计算
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
		AutoMigrate     bool   `yaml:"auto_migrate"`
	} `yaml:"database"`
	Redis struct {
		Enabled     bool   `yaml:"enabled"`
		Addr        string `yaml:"addr"`
		Password    string `yaml:"password"`
		DB          int    `yaml:"db"`
		CacheTTLSec int    `yaml:"cache_ttl_sec"` // 推荐流分页缓存时间，单位：秒
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
	Sources SourcesConfig `yaml:"sources"`
	Feed    struct {
		PersistLimit int `yaml:"persist_limit"` // 每次写入候选队列的条数
	} `yaml:"feed"`
	Inquiry    InquiryConfig `yaml:"inquiry"`
	Background struct {
		TimeoutSec int `yaml:"timeout_sec"` // 后台任务超时，单位：秒
	} `yaml:"background"`
	Cron struct {
		LookbackDays    int `yaml:"lookback_days"`    // 回溯天数
		ProfileHour     int `yaml:"profile_hour"`     // 每天重建画像的小时（0-23）
		ProfileMin      int `yaml:"profile_min"`      // 每天重建画像的分钟（0-59）
		Concurrency     int `yaml:"concurrency"`      // 用户画像重建并发数
		PushConcurrency int `yaml:"push_concurrency"` // 推送并发数
	} `yaml:"cron"`
	Timeouts struct {
		RequestSec  int `yaml:"request_sec"`  // 请求超时，单位：秒
		ResponseSec int `yaml:"response_sec"` // 响应超时，单位：秒
		IdleSec     int `yaml:"idle_sec"`     // 空闲超时，单位：秒
	} `yaml:"timeouts"`
	Debug struct {
		Enabled     bool `yaml:"enabled"`      // 是否启用debug模式
		ProfileFreq int  `yaml:"profile_freq"` // debug模式下画像重建频率，单位：秒
	} `yaml:"debug"`
	Scheduler struct {
		CheckIntervalSec int `yaml:"check_interval_sec"` // 调度器检查间隔（秒）
		PushIntervalSec  int `yaml:"push_interval_sec"`  // 问询推送检查间隔（秒）
		DefaultHour      int `yaml:"default_hour"`       // 默认执行小时
		DefaultMinute    int `yaml:"default_minute"`     // 默认执行分钟
	} `yaml:"scheduler"`
}

// Load 加载配置：.env → config.yaml（可由 CONFIG_PATH 指定）→ 环境变量覆盖
func Load() *Config {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	path := getenv("CONFIG_PATH", "config.yaml")
	cfg, err := LoadFile(path)
	if err != nil {
		log.Printf("Error loading %s: %v, falling back to environment variables", path, err)
		cfg = &Config{}
		applyEnv(cfg)
		applyDefaults(cfg)
		log.Println("配置从环境变量加载，部分配置可能缺失")
		return cfg
	}
	log.Printf("Loading configuration from %s", path)
	return cfg
}

// LoadFile 从指定yaml文件加载配置并补全默认值
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyEnv 从环境变量中加载敏感信息
func applyEnv(cfg *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	// 数据库用户名和密码
	if v := os.Getenv("DATABASE_USERNAME"); v != "" {
		cfg.DB.Username = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DB.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("EXTERNAL_API_KEY"); v != "" {
		cfg.ExternalAPI.APIKey = v
	}
	if v := os.Getenv("PUBMED_API_KEY"); v != "" {
		cfg.Sources.PubMed.APIKey = v
	}
	if v := os.Getenv("SEMANTIC_SCHOLAR_API_KEY"); v != "" {
		cfg.Sources.SemanticScholar.APIKey = v
	}
	if v := os.Getenv("RAG_API_KEY"); v != "" {
		cfg.Sources.Knowledge.APIKey = v
	}
	if v := os.Getenv("INQUIRY_TIMEZONE"); v != "" {
		cfg.Inquiry.Timezone = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	// 计算 Server.Addr 字段
	cfg.Server.Addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "mysql"
	}
	if cfg.DB.DSN == "" {
		switch cfg.DB.Driver {
		case "sqlite":
			path := cfg.DB.SQLitePath
			if path == "" {
				path = "data/coach.db"
			}
			cfg.DB.DSN = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_time_format=sqlite", path)
		default:
			if cfg.DB.Charset == "" {
				cfg.DB.Charset = "utf8mb4"
			}
			// 时间字段统一按UTC读写
			cfg.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=UTC",
				cfg.DB.Username,
				cfg.DB.Password,
				cfg.DB.Host,
				cfg.DB.Port,
				cfg.DB.Database,
				cfg.DB.Charset)
		}
	}

	if cfg.Redis.CacheTTLSec <= 0 {
		cfg.Redis.CacheTTLSec = 300
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "adaptive-coach"
	}

	if cfg.Sources.TimeoutSec <= 0 {
		cfg.Sources.TimeoutSec = 8
	}
	if cfg.Sources.PubMed.BaseURL == "" {
		cfg.Sources.PubMed.BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	}
	if cfg.Sources.PubMed.Limit <= 0 {
		cfg.Sources.PubMed.Limit = 10
	}
	if cfg.Sources.SemanticScholar.BaseURL == "" {
		cfg.Sources.SemanticScholar.BaseURL = "https://api.semanticscholar.org/graph/v1"
	}
	if cfg.Sources.SemanticScholar.Limit <= 0 {
		cfg.Sources.SemanticScholar.Limit = 15
	}
	if cfg.Sources.YouTube.FeedURL == "" {
		cfg.Sources.YouTube.FeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id="
	}
	if cfg.Sources.YouTube.PerChannel <= 0 {
		cfg.Sources.YouTube.PerChannel = 3
	}
	if cfg.Sources.Trending.Path == "" {
		cfg.Sources.Trending.Path = "data/trending_topics.yaml"
	}
	if cfg.Sources.Knowledge.TopK <= 0 {
		cfg.Sources.Knowledge.TopK = 5
	}

	if cfg.Feed.PersistLimit <= 0 {
		cfg.Feed.PersistLimit = 20
	}

	if cfg.Inquiry.CooldownMin <= 0 {
		cfg.Inquiry.CooldownMin = 20
	}
	if cfg.Inquiry.CandidateMinScore <= 0 {
		cfg.Inquiry.CandidateMinScore = 0.6
	}
	if cfg.Inquiry.Timezone == "" {
		cfg.Inquiry.Timezone = "UTC"
	}
	if cfg.Inquiry.DefaultStaleHours <= 0 {
		cfg.Inquiry.DefaultStaleHours = 24
	}
	if cfg.Inquiry.ActivityInitialScore <= 0 {
		cfg.Inquiry.ActivityInitialScore = 0.7
	}
	if cfg.Inquiry.ActivityAlpha <= 0 {
		cfg.Inquiry.ActivityAlpha = 0.3
	}

	if cfg.Background.TimeoutSec <= 0 {
		cfg.Background.TimeoutSec = 30
	}
	if cfg.Cron.LookbackDays <= 0 {
		cfg.Cron.LookbackDays = 7
	}
	if cfg.Cron.Concurrency <= 0 {
		cfg.Cron.Concurrency = 10
	}
	if cfg.Cron.PushConcurrency <= 0 {
		cfg.Cron.PushConcurrency = 5
	}
	if cfg.Scheduler.CheckIntervalSec <= 0 {
		cfg.Scheduler.CheckIntervalSec = 60
	}
	if cfg.Scheduler.PushIntervalSec <= 0 {
		cfg.Scheduler.PushIntervalSec = 600
	}
	if cfg.Debug.ProfileFreq <= 0 {
		cfg.Debug.ProfileFreq = 1800
	}
	if cfg.Timeouts.RequestSec <= 0 {
		cfg.Timeouts.RequestSec = 15
	}
	if cfg.Timeouts.ResponseSec <= 0 {
		cfg.Timeouts.ResponseSec = 30
	}
	if cfg.Timeouts.IdleSec <= 0 {
		cfg.Timeouts.IdleSec = 60
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
