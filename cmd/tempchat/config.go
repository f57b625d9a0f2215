package main

import "time"

type Config struct {
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	Room            string        `env:"CHAT_ROOM,default=all"`
	TTLSeconds      int           `env:"TTL_SECONDS,default=1800"`
	RecentLimit     int           `env:"RECENT_LIMIT,default=30"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=5s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	Colours         bool          `env:"COLOURS,default=true"`
}
