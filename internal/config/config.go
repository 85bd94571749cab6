package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	StatusAddr string

	APIBaseURL string
	WSURL      string
	UserID     int64

	AMQPURL         string
	AMQPExchange    string
	AMQPQueuePrefix string
	AMQPConsumerTag string

	ToastQueueCap int
	ToastDisplay  time.Duration

	ReconnectMin time.Duration
	ReconnectMax time.Duration

	OTELServiceName string
	OTLPEndpoint    string
	OTLPInsecure    bool
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		StatusAddr:      ":8090",
		AMQPExchange:    "chat",
		AMQPQueuePrefix: "chat.user",
		AMQPConsumerTag: "chatnotify",
		ToastQueueCap:   5,
		ToastDisplay:    3 * time.Second,
		ReconnectMin:    time.Second,
		ReconnectMax:    30 * time.Second,
		OTELServiceName: "chatnotify",
		OTLPInsecure:    true,
	}

	if addr := os.Getenv("STATUS_ADDR"); addr != "" {
		cfg.StatusAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.StatusAddr = ":" + port
	}

	cfg.APIBaseURL = os.Getenv("UNREAD_API_URL")
	cfg.WSURL = os.Getenv("CHAT_WS_URL")
	cfg.AMQPURL = os.Getenv("AMQP_URL")

	if v := os.Getenv("CHAT_USER_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.UserID = n
		}
	}

	if v := os.Getenv("AMQP_EXCHANGE"); v != "" {
		cfg.AMQPExchange = v
	}
	if v := os.Getenv("AMQP_QUEUE_PREFIX"); v != "" {
		cfg.AMQPQueuePrefix = v
	}
	if v := os.Getenv("AMQP_CONSUMER_TAG"); v != "" {
		cfg.AMQPConsumerTag = v
	}

	if v := os.Getenv("TOAST_QUEUE_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ToastQueueCap = n
		}
	}
	if v := os.Getenv("TOAST_DISPLAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ToastDisplay = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("RECONNECT_MIN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReconnectMin = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("RECONNECT_MAX_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReconnectMax = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.OTELServiceName = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = b
		}
	}

	return cfg
}
