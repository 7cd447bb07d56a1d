package queue

// Backend selects the storage behind a queue.
type Backend int

const (
	// BackendAuto uses BackendChannel for bounded and BackendList for
	// unbounded queues.
	BackendAuto Backend = iota
	// BackendChannel stores items in a buffered Go channel. Channels cannot
	// grow, so an unbounded queue falls back to BackendList.
	BackendChannel
	// BackendList stores items in a mutex-guarded linked list, bounded or not.
	BackendList
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendChannel:
		return "channel"
	case BackendList:
		return "list"
	default:
		return "unknown"
	}
}

// ParseBackend maps "auto", "channel" and "list" to a Backend.
func ParseBackend(s string) (Backend, bool) {
	for _, b := range []Backend{BackendAuto, BackendChannel, BackendList} {
		if b.String() == s {
			return b, true
		}
	}
	return BackendAuto, false
}

// Option configures a queue.
type Option func(*config)

type config struct {
	backend Backend
}

// WithBackend selects the queue storage (default: BackendAuto).
func WithBackend(b Backend) Option {
	return func(c *config) {
		c.backend = b
	}
}
