package ssacal

import (
	"math"
	"testing"

	"github.com/alicebob/miniredis"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return NewRedisStore(client), s
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, s := newTestRedisStore(t)

	functions := storeFunctions()
	require.NoError(t, store.Save("_FeFoil_8MeV", functions, storeCurves()))
	assert.True(t, s.Exists(REDIS_KEY_PREFIX+"_FeFoil_8MeV"))

	loaded, err := store.Load("_FeFoil_8MeV")
	require.NoError(t, err)
	require.Len(t, loaded, len(functions))
	for i := range functions {
		assert.Equal(t, functions[i].Channel, loaded[i].Channel)
		assert.Equal(t, math.Float64bits(functions[i].A), math.Float64bits(loaded[i].A))
		assert.Equal(t, math.Float64bits(functions[i].B), math.Float64bits(loaded[i].B))
		assert.Equal(t, math.Float64bits(functions[i].AErr), math.Float64bits(loaded[i].AErr))
		assert.Equal(t, math.Float64bits(functions[i].BErr), math.Float64bits(loaded[i].BErr))
	}
}

func TestRedisStoreOverwrite(t *testing.T) {
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.Save("_Cu_6MeV", storeFunctions(), nil))
	require.NoError(t, store.Save("_Cu_6MeV", storeFunctions()[1:], nil))

	loaded, err := store.Load("_Cu_6MeV")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 4, loaded[0].Channel)
}

func TestRedisStoreMissing(t *testing.T) {
	store, s := newTestRedisStore(t)

	_, err := store.Load("_Empty_4MeV")
	require.Error(t, err)

	s.HSet(REDIS_KEY_PREFIX+"_Empty_4MeV", "0", "zz")
	_, err = store.Load("_Empty_4MeV")
	require.Error(t, err)
}

func TestEncodeFunction(t *testing.T) {
	fn := CalibrationFunction{Channel: 6, A: 1, B: -2, AErr: math.Inf(1), BErr: 0}
	decoded, err := decodeFunction(6, encodeFunction(fn))
	require.NoError(t, err)
	assert.Equal(t, fn, decoded)
}
