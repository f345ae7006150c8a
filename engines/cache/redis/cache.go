package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/sirupsen/logrus"
)

const DefaultTTL = 24 * time.Hour

const tsFieldPrefix = "ts:"

// putLatest keeps the newest reading per sensor type. ARGV: sensorType, unix millis, json, ttl millis.
var putLatest = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'ts:' .. ARGV[1]) or '-1')
local incoming = tonumber(ARGV[2])
if incoming >= current then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[3], 'ts:' .. ARGV[1], ARGV[2])
end
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

type RedisLatestReadingCache struct {
	logger *logrus.Entry
	client *redis.Client
	ttl    time.Duration
}

func NewLatestReadingCache(logger *logrus.Entry, conf config.RedisCache) (storage.LatestReadingCache, error) {
	ttl := DefaultTTL
	if conf.TTL != "" {
		parsed, err := time.ParseDuration(conf.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache ttl %s: %w", conf.TTL, err)
		}
		ttl = parsed
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: string(conf.Password),
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", conf.Address, err)
	}

	logger.Infof("connected to redis at %s", conf.Address)
	return &RedisLatestReadingCache{
		logger: logger,
		client: client,
		ttl:    ttl,
	}, nil
}

func LatestKey(tenantID, deviceID string) string {
	return fmt.Sprintf("gateway:%s:device:%s:latest", tenantID, deviceID)
}

func (c *RedisLatestReadingCache) PutLatest(ctx context.Context, reading models.SensorReading) error {
	b, err := json.Marshal(reading)
	if err != nil {
		return err
	}

	key := LatestKey(reading.TenantID, reading.DeviceID)
	err = putLatest.Run(ctx, c.client, []string{key},
		string(reading.SensorType),
		reading.Timestamp.UnixMilli(),
		string(b),
		c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("could not cache reading for %s: %w", reading.DeviceID, err)
	}

	helpers.ConfigureLogger(ctx, c.logger).Tracef("cached latest %s reading for device %s", reading.SensorType, reading.DeviceID)
	return nil
}

func (c *RedisLatestReadingCache) GetLatest(ctx context.Context, tenantID, deviceID string) (map[models.SensorType]models.SensorReading, error) {
	fields, err := c.client.HGetAll(ctx, LatestKey(tenantID, deviceID)).Result()
	if err != nil {
		return nil, err
	}

	return DecodeLatest(fields)
}

// DecodeLatest turns the cached hash back into readings, skipping bookkeeping fields.
func DecodeLatest(fields map[string]string) (map[models.SensorType]models.SensorReading, error) {
	latest := map[models.SensorType]models.SensorReading{}
	for field, value := range fields {
		if strings.HasPrefix(field, tsFieldPrefix) {
			continue
		}

		var reading models.SensorReading
		if err := json.Unmarshal([]byte(value), &reading); err != nil {
			return nil, fmt.Errorf("corrupted cache entry %s: %w", field, err)
		}
		latest[models.SensorType(field)] = reading
	}

	return latest, nil
}

func (c *RedisLatestReadingCache) Close() error {
	return c.client.Close()
}
