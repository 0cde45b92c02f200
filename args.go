package main

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("log-level", "info", "")
	pflag.String("operator-token", "", "")
	pflag.Bool("seed-demo-data", false, "")

	// db config
	pflag.String("db-driver", "memory", "memory or postgres")
	pflag.String("db-host", "localhost", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-name", "auction_market", "")
	pflag.String("db-sslmode", "disable", "")
	pflag.Bool("db-auto-migrate", true, "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 0, "")

	// notifications
	pflag.String("nats-url", "", "")
	pflag.String("notification-stream", "", "redis stream key for notifications")

	// auction processor
	pflag.Duration("sweep-interval", 5*time.Minute, "")
	pflag.Int("sweep-workers", 4, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("AUCTION")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return Args{
		ServerURL:     viper.GetString("server-url"),
		LogLevel:      viper.GetString("log-level"),
		OperatorToken: viper.GetString("operator-token"),
		SeedDemoData:  viper.GetBool("seed-demo-data"),
		DB: DBConfig{
			Driver:      viper.GetString("db-driver"),
			Host:        viper.GetString("db-host"),
			Port:        viper.GetInt("db-port"),
			User:        viper.GetString("db-user"),
			Password:    viper.GetString("db-password"),
			Name:        viper.GetString("db-name"),
			SSLMode:     viper.GetString("db-sslmode"),
			AutoMigrate: viper.GetBool("db-auto-migrate"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis-addr"),
			Password: viper.GetString("redis-password"),
			DB:       viper.GetInt("redis-db"),
		},
		NATSURL:            viper.GetString("nats-url"),
		NotificationStream: viper.GetString("notification-stream"),
		SweepInterval:      viper.GetDuration("sweep-interval"),
		SweepWorkers:       viper.GetInt("sweep-workers"),
	}
}

type DBConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Args struct {
	ServerURL          string
	LogLevel           string
	OperatorToken      string
	SeedDemoData       bool
	DB                 DBConfig
	Redis              RedisConfig
	NATSURL            string
	NotificationStream string
	SweepInterval      time.Duration
	SweepWorkers       int
}

func (args Args) Validate() bool {
	if args.ServerURL == "" || args.SweepInterval <= 0 || args.SweepWorkers <= 0 {
		return false
	}
	switch args.DB.Driver {
	case "memory":
		return true
	case "postgres":
		return args.DB.Host != "" && args.DB.User != "" && args.DB.Name != ""
	default:
		return false
	}
}
