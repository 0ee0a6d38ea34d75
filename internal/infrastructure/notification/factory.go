package notification

import (
	"fmt"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Transport drivers
const (
	DriverRedis = "redis"
	DriverAMQP  = "amqp"
	DriverLog   = "log"
)

// New builds a fan-out notifier over the configured drivers. The redis
// driver needs a client; pass nil when Redis is disabled.
func New(cfg config.NotifyConfig, client *redis.Client, metrics *telemetry.WorkMetrics, logger *zap.Logger) (*MultiNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var notifiers []appprinting.Notifier
	for _, driver := range cfg.Drivers {
		switch driver {
		case DriverRedis:
			if client == nil {
				return nil, fmt.Errorf("notify driver %q requires redis to be enabled", driver)
			}
			notifiers = append(notifiers, NewRedisNotifier(client, cfg.ChannelPrefix))
		case DriverAMQP:
			notifiers = append(notifiers, NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, logger))
		case DriverLog:
			notifiers = append(notifiers, NewLogNotifier(logger))
		default:
			return nil, fmt.Errorf("unknown notify driver %q", driver)
		}
	}
	if len(notifiers) == 0 {
		notifiers = append(notifiers, NewLogNotifier(logger))
	}
	logger.Info("Notification transports configured", zap.Strings("drivers", cfg.Drivers))
	return NewMultiNotifier(logger, metrics, notifiers...), nil
}
