package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classBook/config"
)

// parentField links a per-class record to its class; it is stripped on read.
const parentField = "_parent"

// MongoStore maps every collection to a Mongo collection of the same name.
// Per-class records carry the owning class ID in parentField.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func OpenMongo(ctx context.Context, cfg *config.MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	return NewMongoStore(client, cfg.Database), nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) Add(ctx context.Context, path Path, fields Fields) (string, error) {
	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	if path.Parent != "" {
		doc[parentField] = path.Parent
	}

	res, err := s.db.Collection(path.Collection).InsertOne(ctx, doc)
	if err != nil {
		return "", classifyMongo("add", path.String(), err, true)
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return "", Unavailable("add", path.String(), errors.Errorf("unexpected inserted id %T", id))
	}
}

func (s *MongoStore) List(ctx context.Context, path Path) ([]Document, error) {
	filter := bson.M{parentField: bson.M{"$exists": false}}
	if path.Parent != "" {
		filter = bson.M{parentField: path.Parent}
	}

	cursor, err := s.db.Collection(path.Collection).Find(ctx, filter)
	if err != nil {
		return nil, classifyMongo("list", path.String(), err, false)
	}
	defer cursor.Close(ctx)

	docs := make([]Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, Unavailable("list", path.String(), err)
		}
		docs = append(docs, mongoDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, classifyMongo("list", path.String(), err, false)
	}
	return docs, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mongoDocument(raw bson.M) Document {
	doc := Document{Fields: Fields{}}
	for k, v := range raw {
		switch k {
		case "_id":
			if oid, ok := v.(primitive.ObjectID); ok {
				doc.ID = oid.Hex()
			} else {
				doc.ID = stringField(Fields{"v": v}, "v")
			}
		case parentField:
		default:
			doc.Fields[k] = normalizeBSON(v)
		}
	}
	return doc
}

func normalizeBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.A:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalizeBSON(item)
		}
		return out
	case bson.M:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = normalizeBSON(item)
		}
		return out
	default:
		return v
	}
}

func classifyMongo(op, target string, err error, write bool) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Unavailable(op, target, err)
	}

	var serverErr mongo.ServerError
	if write && errors.As(err, &serverErr) {
		return Rejected(op, target, err)
	}
	return Unavailable(op, target, err)
}
