package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string // 留空则不启用战绩归档
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		TTL      int // 房间与对局的过期秒数
	}
	JWT struct {
		Secret   string
		TTLHours int
	}
}

var C Config

func Load() {
	viper.SetConfigFile("config/config.yaml")
	viper.SetDefault("server.port", ":8080")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.ttl", 86400)
	viper.SetDefault("jwt.ttlhours", 24)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
	if C.JWT.Secret == "" {
		log.Fatal("jwt.secret must be set")
	}
}
