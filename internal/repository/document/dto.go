package document

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teamaeris/opendata-api/internal/db/mongodb"
	domcat "github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
)

type infoDoc struct {
	ListID       any      `bson:"list_id"`
	ListTitle    string   `bson:"list_title"`
	Title        string   `bson:"title"`
	OrgNm        string   `bson:"org_nm"`
	DeptNm       string   `bson:"dept_nm"`
	CategoryNm   string   `bson:"category_nm"`
	Desc         string   `bson:"desc"`
	Keywords     []string `bson:"keywords"`
	IsCharged    string   `bson:"is_charged"`
	ShareScopeNm string   `bson:"share_scope_nm"`
	CreatedAt    any      `bson:"created_at"`
	UpdatedAt    any      `bson:"updated_at"`
}

func (d infoDoc) toDomain(dt domcat.DataType) domdoc.SourceInfo {
	return domdoc.SourceInfo{
		ListID:       domcat.CoerceInt(d.ListID),
		DataType:     dt,
		ListTitle:    d.ListTitle,
		Title:        d.Title,
		OrgNm:        d.OrgNm,
		DeptNm:       d.DeptNm,
		CategoryNm:   d.CategoryNm,
		Desc:         d.Desc,
		Keywords:     d.Keywords,
		IsCharged:    d.IsCharged,
		ShareScopeNm: d.ShareScopeNm,
		CreatedAt:    mongodb.Time(d.CreatedAt),
		UpdatedAt:    mongodb.Time(d.UpdatedAt),
	}
}

type generatedDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ListID      any                `bson:"list_id"`
	DetailURL   string             `bson:"detail_url"`
	Markdown    string             `bson:"markdown"`
	LLMModel    string             `bson:"llm_model"`
	TokenCount  any                `bson:"token_count"`
	ResultJSON  map[string]any     `bson:"result_json"`
	Detail      map[string]any     `bson:"detail"`
	GeneratedAt any                `bson:"generated_at"`
	Status      *bool              `bson:"status"`
}

func (d generatedDoc) toDomain(dt domcat.DataType) domdoc.Generated {
	g := domdoc.Generated{
		ListID:      domcat.CoerceInt(d.ListID),
		DataType:    dt,
		DetailURL:   d.DetailURL,
		Markdown:    d.Markdown,
		LLMModel:    d.LLMModel,
		TokenCount:  int(domcat.CoerceInt(d.TokenCount)),
		ResultJSON:  d.ResultJSON,
		Detail:      d.Detail,
		GeneratedAt: mongodb.Time(d.GeneratedAt),
		Status:      d.Status,
	}
	if !d.ID.IsZero() {
		g.ID = d.ID.Hex()
	}
	return g
}

type savedRequestDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	ListID    *int64             `bson:"list_id"`
	URL       *string            `bson:"url"`
	CreatedAt primitive.DateTime `bson:"created_at"`
}

func newSavedRequestDoc(r domdoc.SavedRequest) savedRequestDoc {
	doc := savedRequestDoc{
		ID:        primitive.NewObjectID(),
		CreatedAt: primitive.NewDateTimeFromTime(r.CreatedAt),
	}
	if r.ListID > 0 {
		id := r.ListID
		doc.ListID = &id
	}
	if r.URL != "" {
		u := r.URL
		doc.URL = &u
	}
	return doc
}
