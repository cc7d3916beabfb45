package catalog

// DataType distinguishes the two source collections.
type DataType string

// Data type constants.
const (
	API  DataType = "API"
	File DataType = "FILE"
)

// IsValid checks if the data type is one of the supported values.
func (d DataType) IsValid() bool {
	return d == API || d == File
}
