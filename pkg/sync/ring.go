package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over a fixed number of shards, identified
// by their index.
type ring struct {
	points *treemap.Map

	// first caches the shard at the lowest point, which owns every hash past
	// the highest point. treemap.Map.Min() is O(log n).
	first int
}

// newRing returns a ring with replicas points per shard. Each shard is
// named, the name hashed once, and the replica points derived from that hash.
func newRing(shards, replicas uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)
	for shard := 0; shard < int(shards); shard++ {
		nameHash, _ := murmur3.Sum128([]byte(fmt.Sprintf("entry%d", shard)))
		shardKey := make([]byte, 8)
		binary.LittleEndian.PutUint64(shardKey, nameHash)

		for replica := 0; replica < int(replicas); replica++ {
			replicaKey := make([]byte, 4)
			binary.LittleEndian.PutUint32(replicaKey, uint32(replica))

			points.Put(hash(shardKey, replicaKey), shard)
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// shard consistently maps the key to a shard index
func (r *ring) shard(key []byte) int {
	_, shard := r.points.Ceiling(hash(key))
	if shard != nil {
		return shard.(int)
	}
	return r.first
}

func hash(parts ...[]byte) int64 {
	hasher := murmur3.New128()
	for _, part := range parts {
		hasher.Write(part)
	}
	h, _ := hasher.Sum128()
	return int64(h)
}
