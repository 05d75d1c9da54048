package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	Game     Game   `yaml:"game"`
	Lobby    Lobby  `yaml:"lobby"`
	Redis    Redis  `yaml:"redis"`
}

type Game struct {
	BoardSize int `yaml:"board-size" env-default:"8"`
}

type Lobby struct {
	MaxPlayers      int           `yaml:"max-players" env-default:"5"`
	PlayerTimeout   time.Duration `yaml:"player-timeout" env-default:"120s"`
	CleanupInterval time.Duration `yaml:"cleanup-interval" env-default:"10s"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
