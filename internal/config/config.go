package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string        `yaml:"env" env-default:"local"`
	DatabaseUrl string        `yaml:"database_url" env:"DATABASE_URL" env-required:"false"`
	Server      ServerConfig  `yaml:"rest" env-required:"false"`
	JWT         JWTSecret     `yaml:"jwt" env-required:"false"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Buckets     BucketsConfig `yaml:"buckets"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"http://localhost:3000"`
}

type JWTSecret struct {
	Secret string `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
}

// MetricsConfig is the company-wide default weight allocation for the
// objective score components. Department rows in storage override it.
type MetricsConfig struct {
	Manager    float64 `yaml:"manager" env-default:"20"`
	Tasks      float64 `yaml:"tasks" env-default:"30"`
	Attendance float64 `yaml:"attendance" env-default:"10"`
}

// BucketsConfig overrides the fallback choice-score thresholds used when a
// form ships no explicit buckets.
type BucketsConfig struct {
	ChoiceLowMax  float64 `yaml:"choice_low_max" env-default:"5"`
	ChoiceHighMin float64 `yaml:"choice_high_min" env-default:"8"`
}

func MustLoad() *Config {
	path := fetchConfigPath()

	if path == "" {
		panic("Config file not found in path")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("Config file not found in path")
	}

	var config Config
	log.Printf("Loading config from %s", path)
	if err := cleanenv.ReadConfig(path, &config); err != nil {
		panic(err)
	}
	return &config
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "./config/local.yaml", "config path")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
