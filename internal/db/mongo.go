package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionCandidates is the collection holding candidate records
const CollectionCandidates = "candidats"

// DefaultMongoDatabase is used when the configuration names none
const DefaultMongoDatabase = "candidate_tracker"

// MongoStore stores candidates in a MongoDB collection
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoCandidate carries the _id alongside the record; older records may hold a string _id.
type mongoCandidate struct {
	ID              any `bson:"_id,omitempty"`
	types.Candidate `bson:",inline"`
}

// ConnectMongo connects to uri and verifies the connection
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	if database == "" {
		database = DefaultMongoDatabase
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(CollectionCandidates),
	}, nil
}

// Insert stores c and returns the hex ObjectID assigned by the server
func (s *MongoStore) Insert(ctx context.Context, c *types.Candidate) (string, error) {
	res, err := s.coll.InsertOne(ctx, mongoCandidate{Candidate: *c})
	if err != nil {
		return "", fmt.Errorf("failed to insert candidate: %w", err)
	}
	return idString(res.InsertedID), nil
}

// FindByID matches an ObjectID _id only
func (s *MongoStore) FindByID(ctx context.Context, id string) (*types.Candidate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindByRawID matches either the ObjectID or the string form of id
func (s *MongoStore) FindByRawID(ctx context.Context, id string) (*types.Candidate, error) {
	return s.findOne(ctx, anyIDFilter(id))
}

// FindOne returns the first candidate whose field equals value
func (s *MongoStore) FindOne(ctx context.Context, field string, value any) (*types.Candidate, error) {
	return s.findOne(ctx, bson.M{field: value})
}

// List returns candidates newest first
func (s *MongoStore) List(ctx context.Context, opts ListOptions) ([]types.Candidate, error) {
	filter := bson.M{}
	if opts.ApplicationStatus != "" {
		filter[types.FieldApplicationStatus] = opts.ApplicationStatus
	}
	if opts.HiringStatus != "" {
		filter[types.FieldHiringStatus] = opts.HiringStatus
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: types.FieldCreatedAt, Value: -1}}).
		SetLimit(int64(listLimit(opts)))

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer cur.Close(ctx)

	var candidates []types.Candidate
	for cur.Next(ctx) {
		var doc mongoCandidate
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode candidate: %w", err)
		}
		candidates = append(candidates, doc.toCandidate())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// Update applies set with a single conditional updateOne
func (s *MongoStore) Update(ctx context.Context, id string, set, cond Fields) (bool, error) {
	filter := anyIDFilter(id)
	for field, want := range cond {
		if want == nil {
			filter[field] = bson.M{"$in": bson.A{nil, ""}}
			continue
		}
		filter[field] = want
	}

	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M(set)})
	if err != nil {
		return false, fmt.Errorf("failed to update candidate: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// Delete removes the candidate stored under id
func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, anyIDFilter(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// Ping checks the connection
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*types.Candidate, error) {
	var doc mongoCandidate
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	c := doc.toCandidate()
	return &c, nil
}

func (d mongoCandidate) toCandidate() types.Candidate {
	c := d.Candidate
	c.ID = idString(d.ID)
	return c
}

// anyIDFilter matches _id stored either as an ObjectID or as the raw string.
func anyIDFilter(id string) bson.M {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{"_id": id}
	}
	return bson.M{"$or": bson.A{bson.M{"_id": oid}, bson.M{"_id": id}}}
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
