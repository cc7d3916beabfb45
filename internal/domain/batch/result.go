package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK ItemStatus = "ok"
	// StatusSkipped marks an item that produced nothing to store, such as a
	// document without similar neighbours.
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of processing one document id in a batch operation.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewSkipped creates a result for an item that was processed but stored nothing.
func NewSkipped(id string) Result { return Result{id: id, status: StatusSkipped} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Count returns how many results have the given status.
func Count(results []Result, status ItemStatus) int {
	n := 0
	for _, r := range results {
		if r.status == status {
			n++
		}
	}
	return n
}
