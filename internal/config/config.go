package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App           App           `mapstructure:",squash"`
	Server        Server        `mapstructure:",squash"`
	Database      Database      `mapstructure:",squash"`
	Redis         Redis         `mapstructure:",squash"`
	Meta          Meta          `mapstructure:",squash"`
	Auth          Auth          `mapstructure:",squash"`
	ProviderSync  ProviderSync  `mapstructure:",squash"`
	ScheduledSync ScheduledSync `mapstructure:",squash"`
	Lease         Lease         `mapstructure:",squash"`
	Correlation   Correlation   `mapstructure:",squash"`
	SecretKey     string        `mapstructure:"secret_key"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN             string        `mapstructure:"-"`
	Driver          string        `mapstructure:"database_driver"`
	Password        string        `mapstructure:"database_password"`
	URL             string        `mapstructure:"database_url"`
	User            string        `mapstructure:"database_user"`
	MaxOpenConns    int           `mapstructure:"database_max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"database_conn_max_lifetime"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type Meta struct {
	BaseURL           string        `mapstructure:"meta_base_url"`
	URL               string        `mapstructure:"meta_url"`
	Version           string        `mapstructure:"meta_version"`
	AppID             string        `mapstructure:"meta_app_id"`
	PageSize          int           `mapstructure:"meta_page_size"`
	MaxPages          int           `mapstructure:"meta_max_pages"`
	RequestsPerSecond float64       `mapstructure:"meta_requests_per_second"`
	RequestBurst      int           `mapstructure:"meta_request_burst"`
	Timeout           time.Duration `mapstructure:"meta_timeout"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// ProviderSync controla a execução de uma sincronização de tenant.
type ProviderSync struct {
	MaxConcurrentJobs   int           `mapstructure:"provider_sync_max_concurrent_jobs"`
	MaxRetries          int           `mapstructure:"provider_sync_max_retries"`
	RetryBaseDelay      time.Duration `mapstructure:"provider_sync_retry_base_delay"`
	RetryMaxDelay       time.Duration `mapstructure:"provider_sync_retry_max_delay"`
	InsightLookbackDays int           `mapstructure:"provider_sync_insight_lookback_days"`
}

type ScheduledSync struct {
	CronSchedule string `mapstructure:"scheduled_sync_cron"`
	Enabled      bool   `mapstructure:"scheduled_sync_enabled"`
}

type Lease struct {
	Backend string        `mapstructure:"lease_backend"`
	TTL     time.Duration `mapstructure:"lease_ttl"`
}

type Correlation struct {
	DefaultWindowDays int `mapstructure:"correlation_default_window_days"`
	MaxWindowDays     int `mapstructure:"correlation_max_window_days"`
}

const (
	LeaseBackendPostgres = "postgres"
	LeaseBackendRedis    = "redis"
)

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/adsync")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 20)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_PAGE_SIZE", 200)
	viper.SetDefault("META_MAX_PAGES", 50)
	viper.SetDefault("META_REQUESTS_PER_SECOND", 5)
	viper.SetDefault("META_REQUEST_BURST", 5)
	viper.SetDefault("META_TIMEOUT", "30s")

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	viper.SetDefault("PROVIDER_SYNC_MAX_CONCURRENT_JOBS", 3)   // 3 contas em paralelo por tenant
	viper.SetDefault("PROVIDER_SYNC_MAX_RETRIES", 4)           // tentativas extras por chamada
	viper.SetDefault("PROVIDER_SYNC_RETRY_BASE_DELAY", "1s")   // atraso inicial do backoff
	viper.SetDefault("PROVIDER_SYNC_RETRY_MAX_DELAY", "30s")   // teto do backoff
	viper.SetDefault("PROVIDER_SYNC_INSIGHT_LOOKBACK_DAYS", 7) // 7 dias de insights por execução

	viper.SetDefault("SCHEDULED_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("SCHEDULED_SYNC_ENABLED", false)

	viper.SetDefault("LEASE_BACKEND", LeaseBackendPostgres)
	viper.SetDefault("LEASE_TTL", "15m")

	viper.SetDefault("CORRELATION_DEFAULT_WINDOW_DAYS", 7)
	viper.SetDefault("CORRELATION_MAX_WINDOW_DAYS", 90)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Validate rejeita combinações que deixariam a sincronização sem limites.
func (c *Config) Validate() error {
	if c.ProviderSync.MaxConcurrentJobs < 1 {
		return fmt.Errorf("PROVIDER_SYNC_MAX_CONCURRENT_JOBS deve ser maior que zero")
	}
	if c.ProviderSync.MaxRetries < 0 {
		return fmt.Errorf("PROVIDER_SYNC_MAX_RETRIES não pode ser negativo")
	}
	if c.Lease.TTL <= 0 {
		return fmt.Errorf("LEASE_TTL deve ser positivo")
	}
	switch c.Lease.Backend {
	case LeaseBackendPostgres, LeaseBackendRedis:
	default:
		return fmt.Errorf("LEASE_BACKEND inválido: %s", c.Lease.Backend)
	}
	if c.Correlation.DefaultWindowDays < 1 || c.Correlation.DefaultWindowDays > c.Correlation.MaxWindowDays {
		return fmt.Errorf("CORRELATION_DEFAULT_WINDOW_DAYS fora do intervalo")
	}
	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
