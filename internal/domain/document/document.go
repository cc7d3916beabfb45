// Package document holds the served shapes of generated standard documents
// and the source records they describe.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamaeris/opendata-api/internal/domain"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
)

const portalBaseURL = "https://www.data.go.kr/data"

// DetailURL returns the public data portal page of a dataset.
func DetailURL(dt catalog.DataType, listID int64) string {
	if dt == catalog.File {
		return fmt.Sprintf("%s/%d/fileData.do", portalBaseURL, listID)
	}
	return fmt.Sprintf("%s/%d/openapi.do", portalBaseURL, listID)
}

// CleanDescription converts portal line breaks into newlines.
func CleanDescription(s string) string {
	return strings.ReplaceAll(s, "<br/>", "\n")
}

// SourceInfo is the subset of an open_data_info or open_file_info record the API serves.
type SourceInfo struct {
	ListID       int64
	DataType     catalog.DataType
	ListTitle    string
	Title        string
	OrgNm        string
	DeptNm       string
	CategoryNm   string
	Desc         string
	Keywords     []string
	IsCharged    string
	ShareScopeNm string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayTitle returns list_title, falling back to title.
func (s *SourceInfo) DisplayTitle() string {
	if s.ListTitle != "" {
		return s.ListTitle
	}
	return s.Title
}

// DisplayOrg returns org_nm, falling back to dept_nm.
func (s *SourceInfo) DisplayOrg() string {
	if s.OrgNm != "" {
		return s.OrgNm
	}
	return s.DeptNm
}

// Generated is a generated standard document.
type Generated struct {
	ID          string
	ListID      int64
	DataType    catalog.DataType
	DetailURL   string
	Markdown    string
	LLMModel    string
	TokenCount  int
	ResultJSON  map[string]any
	Detail      map[string]any
	GeneratedAt time.Time
	// Status is only recorded for file documents.
	Status *bool
}

// Recommended is a similar dataset shown next to a document.
type Recommended struct {
	ListID          int64
	ListTitle       string
	OrgNm           string
	DataType        catalog.DataType
	SimilarityScore float64
}

// Detail is the full view of one dataset.
type Detail struct {
	ListID          int64
	DataType        catalog.DataType
	ListTitle       string
	DetailURL       string
	GeneratedStatus bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Description     string
	OrgNm           string
	DeptNm          string
	IsCharged       string
	ShareScopeNm    string
	Keywords        []string
	TokenCount      int
	GeneratedAt     time.Time
	Markdown        string
	Recommendations []Recommended
}

// NewDetail merges a source record and its generated document. Either may be nil,
// but not both.
func NewDetail(listID int64, dt catalog.DataType, info *SourceInfo, gen *Generated) Detail {
	d := Detail{
		ListID:    listID,
		DataType:  dt,
		DetailURL: DetailURL(dt, listID),
		Keywords:  []string{},
	}
	if info != nil {
		d.ListTitle = info.ListTitle
		if dt == catalog.File {
			d.ListTitle = info.DisplayTitle()
		}
		d.CreatedAt = info.CreatedAt
		d.UpdatedAt = info.UpdatedAt
		d.Description = CleanDescription(info.Desc)
		d.OrgNm = info.OrgNm
		d.DeptNm = info.DeptNm
		d.IsCharged = info.IsCharged
		d.ShareScopeNm = info.ShareScopeNm
		if info.Keywords != nil {
			d.Keywords = info.Keywords
		}
	}
	if gen != nil {
		d.GeneratedStatus = true
		d.TokenCount = gen.TokenCount
		d.GeneratedAt = gen.GeneratedAt
		d.Markdown = gen.Markdown
	}
	return d
}

// SavedRequest asks for a document to be generated for a dataset or URL.
type SavedRequest struct {
	ID        string
	ListID    int64
	URL       string
	CreatedAt time.Time
}

// NewSavedRequest validates that at least one of listID or url is set.
func NewSavedRequest(listID int64, url string, now time.Time) (SavedRequest, error) {
	url = strings.TrimSpace(url)
	if listID <= 0 && url == "" {
		return SavedRequest{}, fmt.Errorf("list_id or url is required: %w", domain.ErrInvalidArgument)
	}
	return SavedRequest{ListID: listID, URL: url, CreatedAt: now}, nil
}
