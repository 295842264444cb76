package database

import (
	"context"
	"errors"
)

// IDField is the document id key used in filters, whatever the backend.
const IDField = "_id"

var ErrUnknownCollection = errors.New("database: unknown collection")

// Filter matches documents by field equality. A value of type In matches
// when the field equals any of its members. An empty Filter matches all.
type Filter map[string]any

// In is a set-membership filter value.
type In []any

// Patch is the field set applied by an update, the equivalent of $set.
type Patch map[string]any

func ByID(id string) Filter {
	return Filter{IDField: id}
}

func IDIn(ids []string) Filter {
	in := make(In, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	return Filter{IDField: in}
}

// Document is implemented by every stored record so stores can report the
// assigned id back to the caller.
type Document interface {
	DocumentID() string
	SetDocumentID(id string)
}

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type InsertManyResult struct {
	Acknowledged bool     `json:"acknowledged"`
	InsertedIDs  []string `json:"insertedIds"`
}

type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Collection is a named group of documents.
type Collection interface {
	InsertOne(ctx context.Context, doc Document) (*InsertResult, error)
	InsertMany(ctx context.Context, docs []Document) (*InsertManyResult, error)
	// Find decodes every matching document into out, a pointer to a slice.
	Find(ctx context.Context, filter Filter, out any) error
	UpdateOne(ctx context.Context, filter Filter, patch Patch, upsert bool) (*UpdateResult, error)
	UpdateMany(ctx context.Context, filter Filter, patch Patch) (*UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error)
}

// Store is a connection to the database. It is opened once at startup and
// closed on shutdown.
type Store interface {
	Collection(name string) (Collection, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
