package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and verifies the connection with a ping.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewMongoStore(client, dbName), nil
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(dbName)}
}

func (s *MongoStore) Collection(name string) (Collection, error) {
	return &mongoCollection{coll: s.db.Collection(name)}, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc Document) (*InsertResult, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	id := idString(res.InsertedID)
	doc.SetDocumentID(id)
	return &InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *mongoCollection) InsertMany(ctx context.Context, docs []Document) (*InsertManyResult, error) {
	if len(docs) == 0 {
		return &InsertManyResult{Acknowledged: true, InsertedIDs: []string{}}, nil
	}
	in := make([]any, len(docs))
	for i, d := range docs {
		in[i] = d
	}
	// On a partial failure the result lists only the stored ids, so they can
	// no longer be matched to docs by position.
	res, err := c.coll.InsertMany(ctx, in, options.InsertMany().SetOrdered(false))
	if res == nil {
		return nil, err
	}
	out := &InsertManyResult{Acknowledged: true, InsertedIDs: make([]string, 0, len(res.InsertedIDs))}
	for i, raw := range res.InsertedIDs {
		id := idString(raw)
		if err == nil && i < len(docs) {
			docs[i].SetDocumentID(id)
		}
		out.InsertedIDs = append(out.InsertedIDs, id)
	}
	return out, err
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, out any) error {
	cursor, err := c.coll.Find(ctx, toBSON(filter))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter Filter, patch Patch, upsert bool) (*UpdateResult, error) {
	opts := options.Update().SetUpsert(upsert)
	res, err := c.coll.UpdateOne(ctx, toBSON(filter), bson.M{"$set": bson.M(patch)}, opts)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func (c *mongoCollection) UpdateMany(ctx context.Context, filter Filter, patch Patch) (*UpdateResult, error) {
	res, err := c.coll.UpdateMany(ctx, toBSON(filter), bson.M{"$set": bson.M(patch)})
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	res, err := c.coll.DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return nil, err
	}
	return &DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func updateResult(res *mongo.UpdateResult) *UpdateResult {
	out := &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		id := idString(res.UpsertedID)
		out.UpsertedID = &id
	}
	return out
}

// toBSON converts a Filter into a query document. Values of the id field
// that are valid ObjectID hex strings are matched as ObjectIDs.
func toBSON(f Filter) bson.D {
	doc := make(bson.D, 0, len(f))
	for _, k := range sortedKeys(f) {
		v := f[k]
		if in, ok := v.(In); ok {
			vals := make(bson.A, len(in))
			for i, item := range in {
				vals[i] = idValue(k, item)
			}
			doc = append(doc, bson.E{Key: k, Value: bson.M{"$in": vals}})
			continue
		}
		doc = append(doc, bson.E{Key: k, Value: idValue(k, v)})
	}
	return doc
}

func idValue(key string, v any) any {
	if key != IDField {
		return v
	}
	if s, ok := v.(string); ok {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return oid
		}
	}
	return v
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
