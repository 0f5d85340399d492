package treetask

// Weight is the fixed priority class a Task is submitted under. It governs
// how the Service splits worker capacity across ready queues once the pool
// is overloaded; it is immutable for the lifetime of a Task.
type Weight uint8

// Fixed weight ladder. Light gets the largest worker share under overload,
// Heavy the smallest. There is no facility for adding further priority
// levels (see spec Non-goals).
const (
	Light Weight = iota
	Middle
	Heavy

	numWeights = int(Heavy) + 1
)

// String renders the weight for logging and metric labels.
func (w Weight) String() string {
	switch w {
	case Light:
		return "light"
	case Middle:
		return "middle"
	case Heavy:
		return "heavy"
	default:
		return "unknown"
	}
}
