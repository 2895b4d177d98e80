// Package store archives fetched map documents in MongoDB. The archive is
// optional: the pipeline works without it, but keeping every fetched
// document allows holder-distribution history to be inspected later.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
)

const collectionName = "maps"

// ArchivedMap is one stored fetch of a map document.
type ArchivedMap struct {
	Chain        string           `bson:"chain"`
	TokenAddress string           `bson:"token_address"`
	MapHash      string           `bson:"map_hash"`
	FetchedAt    time.Time        `bson:"fetched_at"`
	Holders      int              `bson:"holders"`
	Document     mapdata.Document `bson:"document"`
}

// MapStore is a MongoDB-backed archive of map documents.
type MapStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens the archive. It pings the server so a bad URI fails fast
// instead of on first write.
func Connect(ctx context.Context, uri, database string) (*MapStore, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "store URI cannot be empty")
	}
	if database == "" {
		database = "bubblegraph"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to map store")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping map store")
	}

	s := &MapStore{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MapStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chain", Value: 1}, {Key: "token_address", Value: 1}, {Key: "fetched_at", Value: -1}}},
		{Keys: bson.D{{Key: "map_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create map store indexes")
	}
	return nil
}

// Archive stores one fetched document. Re-archiving an identical document
// (same content hash) is a no-op rather than an error.
func (s *MapStore) Archive(ctx context.Context, doc *mapdata.Document, mapHash string) error {
	record := newArchivedMap(doc, mapHash, time.Now().UTC())

	filter := bson.M{"map_hash": mapHash}
	update := bson.M{"$setOnInsert": record}
	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "archive map document")
	}
	return nil
}

// Latest returns the most recently fetched document for a token.
func (s *MapStore) Latest(ctx context.Context, chain, token string) (*ArchivedMap, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "fetched_at", Value: -1}})
	var record ArchivedMap
	err := s.coll.FindOne(ctx, bson.M{"chain": chain, "token_address": token}, opts).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "no archived map for %s on %s", token, chain)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load archived map")
	}
	return &record, nil
}

// History returns archived fetches for a token, most recent first.
func (s *MapStore) History(ctx context.Context, chain, token string, limit int64) ([]ArchivedMap, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().SetSort(bson.D{{Key: "fetched_at", Value: -1}}).SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.M{"chain": chain, "token_address": token}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query map history")
	}
	defer cur.Close(ctx)

	var records []ArchivedMap
	if err := cur.All(ctx, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode map history")
	}
	return records, nil
}

// Close disconnects from the backend.
func (s *MapStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func newArchivedMap(doc *mapdata.Document, mapHash string, fetchedAt time.Time) ArchivedMap {
	return ArchivedMap{
		Chain:        doc.Chain,
		TokenAddress: doc.TokenAddress,
		MapHash:      mapHash,
		FetchedAt:    fetchedAt,
		Holders:      len(doc.Nodes),
		Document:     *doc,
	}
}
