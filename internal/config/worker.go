package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	FetchTimeout   time.Duration
}

var (
	workerConfig *WorkerConfig
	workerOnce   sync.Once
)

func LoadWorkerConfig() *WorkerConfig {
	workerOnce.Do(func() {
		workerConfig = newWorkerConfig(environment())
	})
	return workerConfig
}

func newWorkerConfig(v *viper.Viper) *WorkerConfig {
	return &WorkerConfig{
		Workers:        v.GetInt("worker_count"),
		QueueSize:      v.GetInt("worker_queue_size"),
		ProcessTimeout: v.GetDuration("worker_process_timeout"),
		FetchTimeout:   v.GetDuration("fetch_timeout"),
	}
}
