package mqtt

// bufferedMsg is a serialized message waiting for the broker.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO holding messages while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	buf     []bufferedMsg
	head    int // next write position
	count   int
	dropped int // overwritten since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{buf: make([]bufferedMsg, capacity)}
}

// push appends msg and reports whether an older message was dropped to make room.
func (o *outbox) push(msg bufferedMsg) bool {
	capacity := len(o.buf)
	o.buf[o.head] = msg
	o.head = (o.head + 1) % capacity

	if o.count == capacity {
		o.dropped++
		return true
	}
	o.count++
	return false
}

// drain returns the buffered messages oldest first, plus how many were
// dropped, and empties the outbox.
func (o *outbox) drain() ([]bufferedMsg, int) {
	dropped := o.dropped
	o.dropped = 0
	if o.count == 0 {
		return nil, dropped
	}

	capacity := len(o.buf)
	out := make([]bufferedMsg, o.count)
	start := (o.head - o.count + capacity) % capacity
	for i := range out {
		out[i] = o.buf[(start+i)%capacity]
	}

	o.head = 0
	o.count = 0
	return out, dropped
}

func (o *outbox) len() int {
	return o.count
}
