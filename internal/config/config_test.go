package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		ProviderSync: ProviderSync{MaxConcurrentJobs: 3, MaxRetries: 2},
		Lease:        Lease{Backend: LeaseBackendPostgres, TTL: time.Minute},
		Correlation:  Correlation{DefaultWindowDays: 7, MaxWindowDays: 90},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "configuração padrão é válida", mutate: func(c *Config) {}},
		{name: "backend redis é aceito", mutate: func(c *Config) { c.Lease.Backend = LeaseBackendRedis }},
		{name: "sem workers", mutate: func(c *Config) { c.ProviderSync.MaxConcurrentJobs = 0 }, wantErr: true},
		{name: "retries negativos", mutate: func(c *Config) { c.ProviderSync.MaxRetries = -1 }, wantErr: true},
		{name: "lease sem ttl", mutate: func(c *Config) { c.Lease.TTL = 0 }, wantErr: true},
		{name: "backend desconhecido", mutate: func(c *Config) { c.Lease.Backend = "etcd" }, wantErr: true},
		{name: "janela padrão acima do máximo", mutate: func(c *Config) { c.Correlation.DefaultWindowDays = 120 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
