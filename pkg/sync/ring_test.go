package sync

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)

	for i := 0; i < 256; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		shard := r.shard(key)
		assert.True(t, shard >= 0 && shard < 64)

		for j := 0; j < 16; j++ {
			assert.Equal(t, shard, r.shard(key))
		}

		// A separately built ring agrees on every key
		assert.Equal(t, shard, newRing(64, 200).shard(key))
	}
}

func TestRing_Distribution(t *testing.T) {
	shardCount := 5
	iterations := 500000
	marginOfError := 0.1
	expectedFrequency := iterations / shardCount

	r := newRing(uint(shardCount), 200)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		hits[r.shard(key)]++
	}

	assert.EqualValues(t, shardCount, len(hits))
	for _, hitCount := range hits {
		assert.True(t, math.Abs(float64(hitCount-expectedFrequency)) <= marginOfError*float64(expectedFrequency))
	}
}

func TestRing_SingleShard(t *testing.T) {
	r := newRing(1, 1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, r.shard([]byte{byte(i)}))
	}
}

func TestRing_PointsPerShard(t *testing.T) {
	r := newRing(5, 200)
	assert.Equal(t, 1000, r.points.Size())

	owners := make(map[int]int)
	for _, v := range r.points.Values() {
		owners[v.(int)]++
	}
	for shard := 0; shard < 5; shard++ {
		assert.Equal(t, 200, owners[shard])
	}
}
