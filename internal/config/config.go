package config

import (
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type KafkaConfig struct {
	Enabled         bool     `toml:"enabled"`
	Brokers         []string `toml:"brokers"`
	ClientID        string   `toml:"clientID"`
	EventTopic      string   `toml:"eventTopic"`
	NotifyTopic     string   `toml:"notifyTopic"`
	ConsumerGroupID string   `toml:"consumerGroupID"`
}

type RedisConfig struct {
	Enabled      bool   `toml:"enabled"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

// NotificationConfig 通知子系统的行为参数
type NotificationConfig struct {
	// StatsCacheSeconds 统计聚合的缓存时长（秒）
	StatsCacheSeconds int `toml:"statsCacheSeconds"`
	// RetentionDays 过期通知的保留天数，超过后由清理任务物理删除
	RetentionDays int `toml:"retentionDays"`
	// SweepCron 定时投递/过期清理的 Cron 表达式（标准5段）
	SweepCron string `toml:"sweepCron"`
}

type Config struct {
	MainConfig         `toml:"mainConfig"`
	MysqlConfig        `toml:"mysqlConfig"`
	JwtConfig          `toml:"jwtConfig"`
	KafkaConfig        `toml:"kafkaConfig"`
	RedisConfig        `toml:"redisConfig"`
	LogConfig          `toml:"logConfig"`
	NotificationConfig `toml:"notificationConfig"`
}

var config *Config

func LoadConfig() error {
	configPath := os.Getenv("WRAPDESK_CONFIG")
	if configPath == "" {
		configPath = "configs/config_local.toml"
	}
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("加载配置文件失败: %v, 尝试使用默认设置", err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
