package mqtt

import "log/slog"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that stores messages while disconnected.
// A retained message replaces any queued message for the same topic, since
// only the latest characteristic value matters to the broker.
// Not safe for concurrent use; the caller must synchronize.
type ringBuffer struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
	log      *slog.Logger
}

func newRingBuffer(capacity int, log *slog.Logger) *ringBuffer {
	if log == nil {
		log = slog.Default()
	}
	return &ringBuffer{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
		log:      log,
	}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if msg.retained {
		for i := 0; i < r.count; i++ {
			idx := (r.head - r.count + i + r.capacity) % r.capacity
			if r.buf[idx].retained && r.buf[idx].topic == msg.topic {
				r.buf[idx] = msg
				return
			}
		}
	}

	if r.count == r.capacity {
		if !r.overflow {
			r.log.Warn("buffer full, dropping oldest", "capacity", r.capacity)
			r.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]bufferedMsg, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
