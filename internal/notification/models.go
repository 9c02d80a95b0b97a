package notification

// Event is the engine's output unit. ID is a composite of predicate id,
// schema list, row id and the raw date value, so repeated evaluation of
// unchanged data yields the same identity and callers can deduplicate on it.
type Event struct {
	Plugin    string `json:"plugin"`
	ID        string `json:"id"`
	Full      string `json:"full"`
	Brief     string `json:"brief"`
	Timestamp int64  `json:"timestamp"`
}
