package trial

// Recorder is the session-scoped, append-only, ordered result log.
// It is not safe for concurrent use; the owning session serializes access.
type Recorder struct {
	results []Result
}

// NewRecorder creates a recorder with room for capacity results
func NewRecorder(capacity int) *Recorder {
	return &Recorder{results: make([]Result, 0, capacity)}
}

// Append adds a result at the end of the log
func (r *Recorder) Append(result Result) {
	r.results = append(r.results, result.clone())
}

// Len returns the number of recorded results
func (r *Recorder) Len() int {
	return len(r.results)
}

// Snapshot returns a deep copy of the log in insertion order
func (r *Recorder) Snapshot() []Result {
	out := make([]Result, len(r.results))
	for i, res := range r.results {
		out[i] = res.clone()
	}
	return out
}
