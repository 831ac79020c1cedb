package models

import (
	"encoding/json"
	"fmt"
)

// Collection names used in the document store.
const (
	CollectionWebinars        = "webinars"
	CollectionEvents          = "events"
	CollectionTestimonials    = "testimonials"
	CollectionCommunityLinks  = "community_links"
	CollectionGallery         = "gallery"
	CollectionContactMessages = "contact_messages"
	CollectionReviews         = "reviews"
	CollectionAdminUsers      = "admin_users"
	CollectionAuditLogs       = "audit_logs"
)

// Fields is the schemaless payload of a stored document. Values are limited
// to what JSON can represent.
type Fields map[string]interface{}

// Document is a stored record: a key assigned by the store plus its fields.
type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Filter is an equality predicate on a top-level field.
type Filter struct {
	Field string
	Value interface{}
}

// SortDirection orders query results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// OrderBy sorts results on one field.
type OrderBy struct {
	Field     string
	Direction SortDirection
}

// DocumentQuery selects documents from one collection. Filters are ANDed.
type DocumentQuery struct {
	Collection string
	Filters    []Filter
	OrderBy    *OrderBy
}

// ToFields converts a JSON-tagged value into document fields. The id key is
// dropped since the store owns identity.
func ToFields(v interface{}) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	fields := Fields{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}

// Decode fills dest from the document fields plus its id.
func (d Document) Decode(dest interface{}) error {
	merged := make(Fields, len(d.Fields)+1)
	for k, v := range d.Fields {
		merged[k] = v
	}
	merged["id"] = d.ID
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}
