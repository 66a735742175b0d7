package sync

import (
	base "sync"
)

const (
	pointsPerChannel = 200
)

// StripedChannel consistently maps a key space onto a fixed set of channels,
// so values sent with the same key are received in order by one consumer.
type StripedChannel[T any] struct {
	channels []chan T
	ring     *ring
	close    base.Once
}

// NewStripedChannel returns a new StripedChannel with a static number of
// channels, each buffering up to queueSize values.
func NewStripedChannel[T any](count, queueSize uint) *StripedChannel[T] {
	channels := make([]chan T, count)
	for i := range channels {
		channels[i] = make(chan T, queueSize)
	}

	return &StripedChannel[T]{
		channels: channels,
		ring:     newRing(count, pointsPerChannel),
	}
}

// Channels returns the set of all receiver channels.
func (c *StripedChannel[T]) Channels() []<-chan T {
	receivers := make([]<-chan T, len(c.channels))
	for i, channel := range c.channels {
		receivers[i] = channel
	}
	return receivers
}

// Send sends the value to the channel that maps to the key. It is non-blocking
// and returns whether the value was put on the channel.
func (c *StripedChannel[T]) Send(key []byte, value T) bool {
	select {
	case c.channels[c.ring.shard(key)] <- value:
		return true
	default:
		return false
	}
}

// BlockingSend is a blocking variation of Send.
func (c *StripedChannel[T]) BlockingSend(key []byte, value T) {
	c.channels[c.ring.shard(key)] <- value
}

// Close closes all underlying channels.
func (c *StripedChannel[T]) Close() {
	c.close.Do(func() {
		for _, channel := range c.channels {
			close(channel)
		}
	})
}
