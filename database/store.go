package database

import (
	"context"
)

const (
	SubjectsCollection   = "subjects"
	ClassesCollection    = "classes"
	StudentsCollection   = "students"
	ScheduleCollection   = "schedule"
	AttendanceCollection = "attendance"
)

// Path addresses a collection. Parent is the owning class ID for the per-class
// sub-collections and empty for subjects and classes.
type Path struct {
	Parent     string
	Collection string
}

func (p Path) String() string {
	if p.Parent == "" {
		return p.Collection
	}
	return ClassesCollection + "/" + p.Parent + "/" + p.Collection
}

// Fields is a flat field-name to value map, the stored form of every record.
type Fields map[string]interface{}

// Document is a stored record together with its store-generated ID.
type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// DocumentStore is the remote document database: append and list, nothing else.
// List order is whatever the backend returns.
type DocumentStore interface {
	Add(ctx context.Context, path Path, fields Fields) (string, error)
	List(ctx context.Context, path Path) ([]Document, error)
	Close() error
}

func copyFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func copyDocuments(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, doc := range docs {
		out[i] = Document{ID: doc.ID, Fields: copyFields(doc.Fields)}
	}
	return out
}
