package catalog

// Paging defaults and bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// SnapshotSize is the number of rows kept per rank collection.
	SnapshotSize = 1000
)

// Paging is a validated page request.
type Paging struct {
	Page int
	Size int
}

// NewPaging clamps page to >= 1 and size to [1, MaxPageSize].
func NewPaging(page, size int) Paging {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	} else if size > MaxPageSize {
		size = MaxPageSize
	}
	return Paging{Page: page, Size: size}
}

// Offset returns the number of rows to skip.
func (p Paging) Offset() int {
	return (p.Page - 1) * p.Size
}

// TotalPages returns ceil(total/size), or 0 when size is not positive.
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// MaxSnapshotPage is the last page fully served by a snapshot of snapshotSize rows.
func MaxSnapshotPage(snapshotSize, size int) int {
	if size <= 0 {
		return 0
	}
	return snapshotSize / size
}
