package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/itzrizvi/yooda-hostel-server/internal/model"
)

func TestToBSON(t *testing.T) {
	oid := primitive.NewObjectID()

	doc := toBSON(Filter{IDField: oid.Hex(), "roll": "12"})
	assert.Equal(t, bson.D{{Key: "_id", Value: oid}, {Key: "roll", Value: "12"}}, doc)

	doc = toBSON(IDIn([]string{oid.Hex(), "plain-id"}))
	assert.Equal(t, bson.D{{Key: "_id", Value: bson.M{"$in": bson.A{oid, "plain-id"}}}}, doc)

	assert.Empty(t, toBSON(Filter{}))
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "abc", idString("abc"))
	assert.Equal(t, "42", idString(int32(42)))
}

// setupMongo starts a throwaway MongoDB container. The test is skipped in
// -short mode or when Docker is unavailable.
func setupMongo(t *testing.T) *MongoStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not construct docker pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	tag := os.Getenv("HOSTEL_MONGO_TEST_TAG")
	if tag == "" {
		tag = "7"
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        tag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start mongo: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://localhost:%s", resource.GetPort("27017/tcp"))
	pool.MaxWait = time.Minute

	var store *MongoStore
	if err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s, err := OpenMongo(ctx, uri, "yooda_hostel_test")
		if err != nil {
			return err
		}
		store = s
		return nil
	}); err != nil {
		t.Fatalf("could not connect to mongo: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestMongoCollectionRoundTrip(t *testing.T) {
	store := setupMongo(t)
	ctx := context.Background()

	students, err := store.Collection(model.StudentCollection)
	require.NoError(t, err)

	a := &model.Student{FullName: "A", Roll: "1", Class: "10", Age: 15, HallName: "North", Status: "absent"}
	b := &model.Student{FullName: "B", Roll: "1", Class: "11", Age: 16, HallName: "South", Status: "absent"}
	res, err := students.InsertOne(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, res.InsertedID, a.ID)
	_, err = students.InsertMany(ctx, []Document{b})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)

	var sameRoll []model.Student
	require.NoError(t, students.Find(ctx, Filter{"roll": "1"}, &sameRoll))
	assert.Len(t, sameRoll, 2)

	upd, err := students.UpdateMany(ctx, IDIn([]string{a.ID, primitive.NewObjectID().Hex()}), Patch{"status": "present"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.MatchedCount)
	assert.Equal(t, int64(1), upd.ModifiedCount)

	missing := primitive.NewObjectID().Hex()
	upd, err = students.UpdateOne(ctx, ByID(missing), Patch{"status": "present"}, true)
	require.NoError(t, err)
	require.NotNil(t, upd.UpsertedID)
	assert.Equal(t, missing, *upd.UpsertedID)

	del, err := students.DeleteOne(ctx, ByID(primitive.NewObjectID().Hex()))
	require.NoError(t, err)
	assert.Equal(t, int64(0), del.DeletedCount)

	del, err = students.DeleteOne(ctx, ByID(a.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)

	var all []model.Student
	require.NoError(t, students.Find(ctx, Filter{}, &all))
	assert.Len(t, all, 2)
	assert.NoError(t, store.Ping(ctx))
}
