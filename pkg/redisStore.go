package ssacal

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis"
)

const REDIS_KEY_PREFIX = "ssacal:calibration:"

// RedisStore keeps the functions of a configuration in a hash with one
// field per channel. Parameters are stored as the hexadecimal bit pattern
// of each float64 so that loading returns exactly the saved values.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func ConnectToRedis(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis server at %s: %w", addr, err)
	}
	return client, nil
}

func redisKey(id string) string {
	return REDIS_KEY_PREFIX + id
}

func (s *RedisStore) Save(id string, functions []CalibrationFunction, curves []CalibrationCurve) error {
	key := redisKey(id)
	pipe := s.Client.Pipeline()
	pipe.Del(key)
	for _, fn := range functions {
		pipe.HSet(key, strconv.Itoa(fn.Channel), encodeFunction(fn))
	}
	if _, err := pipe.Exec(); err != nil {
		return fmt.Errorf("error saving calibration %s: %w", id, err)
	}
	if verbosity > 0 {
		message := fmt.Sprintf("%d calibration functions written to %s", len(functions), key)
		logger.Info(message, "store")
	}
	return nil
}

func (s *RedisStore) Load(id string) ([]CalibrationFunction, error) {
	key := redisKey(id)
	fields, err := s.Client.HGetAll(key).Result()
	if err != nil {
		return nil, fmt.Errorf("error loading calibration %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no calibration stored under %s", key)
	}

	functions := make([]CalibrationFunction, 0, len(fields))
	for field, value := range fields {
		channel, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid channel field %q in %s", field, key)
		}
		fn, err := decodeFunction(channel, value)
		if err != nil {
			return nil, fmt.Errorf("channel %d in %s: %w", channel, key, err)
		}
		functions = append(functions, fn)
	}
	sort.Slice(functions, func(i, j int) bool {
		return functions[i].Channel < functions[j].Channel
	})
	return functions, nil
}

func encodeFunction(fn CalibrationFunction) string {
	params := []float64{fn.A, fn.B, fn.AErr, fn.BErr}
	encoded := make([]string, len(params))
	for i, p := range params {
		encoded[i] = strconv.FormatUint(math.Float64bits(p), 16)
	}
	return strings.Join(encoded, ":")
}

func decodeFunction(channel int, value string) (CalibrationFunction, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 4 {
		return CalibrationFunction{}, fmt.Errorf("expected 4 parameters, got %d", len(parts))
	}
	var params [4]float64
	for i, part := range parts {
		bits, err := strconv.ParseUint(part, 16, 64)
		if err != nil {
			return CalibrationFunction{}, err
		}
		params[i] = math.Float64frombits(bits)
	}
	return CalibrationFunction{
		Channel: channel,
		A:       params[0],
		B:       params[1],
		AErr:    params[2],
		BErr:    params[3],
	}, nil
}
