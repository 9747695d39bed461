package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Значения по умолчанию.
const (
	DefaultAPIPort          = "3000"
	DefaultControllerPort   = "8081"
	DefaultCollector        = "alloy:4317"
	DefaultEnvironment      = "atlas-local"
	DefaultAPIService       = "atlas-rust-api"
	DefaultControllerName   = "atlas-go-controller"
	DefaultSyncDelay        = 50 * time.Millisecond
	DefaultRefreshInterval  = 10 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultTraceFlushPeriod = 5 * time.Second
)

// Getenv — источник переменных окружения (os.Getenv или подмена в тестах).
type Getenv func(key string) string

// Tracing — настройки OTLP экспорта.
type Tracing struct {
	Enabled     bool
	Endpoint    string // host:port коллектора (gRPC)
	Insecure    bool
	ServiceName string
	Environment string
}

// API — конфигурация atlas-api.
type API struct {
	Addr            string
	SyncDelay       time.Duration
	AMQPURL         string // пустой — публикация событий выключена
	ShutdownTimeout time.Duration
	Tracing         Tracing
}

// Controller — конфигурация atlas-controller.
type Controller struct {
	Addr            string
	RefreshInterval time.Duration
	AMQPURL         string
	ShutdownTimeout time.Duration
	Tracing         Tracing
}

// LoadAPI читает конфигурацию API из окружения процесса.
func LoadAPI() (API, error) {
	return LoadAPIFrom(os.Getenv)
}

// LoadAPIFrom читает конфигурацию API через getenv.
//
// Ошибки разбора не фатальны: для невалидного значения используется
// дефолт, а все ошибки возвращаются одной пачкой.
func LoadAPIFrom(getenv Getenv) (API, error) {
	var errs []error

	delay, err := duration(getenv, "SYNC_DELAY", DefaultSyncDelay)
	errs = append(errs, err)
	if delay < DefaultSyncDelay {
		errs = append(errs, fmt.Errorf("SYNC_DELAY %s is below %s", delay, DefaultSyncDelay))
		delay = DefaultSyncDelay
	}

	tracing, err := loadTracing(getenv, DefaultAPIService)
	errs = append(errs, err)

	cfg := API{
		Addr:            ":" + str(getenv, "API_PORT", DefaultAPIPort),
		SyncDelay:       delay,
		AMQPURL:         getenv("AMQP_URL"),
		ShutdownTimeout: DefaultShutdownTimeout,
		Tracing:         tracing,
	}
	return cfg, errors.Join(errs...)
}

// LoadController читает конфигурацию controller из окружения процесса.
func LoadController() (Controller, error) {
	return LoadControllerFrom(os.Getenv)
}

// LoadControllerFrom читает конфигурацию controller через getenv.
func LoadControllerFrom(getenv Getenv) (Controller, error) {
	var errs []error

	interval, err := duration(getenv, "SHIELD_REFRESH_INTERVAL", DefaultRefreshInterval)
	errs = append(errs, err)
	if interval < time.Second {
		errs = append(errs, fmt.Errorf("SHIELD_REFRESH_INTERVAL %s is below 1s", interval))
		interval = DefaultRefreshInterval
	}

	tracing, err := loadTracing(getenv, DefaultControllerName)
	errs = append(errs, err)

	cfg := Controller{
		Addr:            ":" + str(getenv, "CONTROLLER_PORT", DefaultControllerPort),
		RefreshInterval: interval,
		AMQPURL:         getenv("AMQP_URL"),
		ShutdownTimeout: DefaultShutdownTimeout,
		Tracing:         tracing,
	}
	return cfg, errors.Join(errs...)
}

func loadTracing(getenv Getenv, serviceName string) (Tracing, error) {
	enabled, err := boolean(getenv, "TRACING_ENABLED", true)
	insecure, err2 := boolean(getenv, "OTEL_EXPORTER_OTLP_INSECURE", true)

	return Tracing{
		Enabled:     enabled,
		Endpoint:    str(getenv, "OTEL_EXPORTER_OTLP_ENDPOINT", DefaultCollector),
		Insecure:    insecure,
		ServiceName: str(getenv, "OTEL_SERVICE_NAME", serviceName),
		Environment: str(getenv, "ATLAS_ENV", DefaultEnvironment),
	}, errors.Join(err, err2)
}

// --- Helpers ---

func str(getenv Getenv, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func duration(getenv Getenv, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("invalid %s %q: expected positive duration", key, v)
	}
	return d, nil
}

func boolean(getenv Getenv, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
