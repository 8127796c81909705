// Package mongostore backs the taproom engines with MongoDB document
// collections: "kegs" keyed by a generated id and "taps" keyed by the tap
// number as a string. Partial updates map directly onto $set, which gives
// the merge semantics the engines require.
package mongostore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

const (
	connectTimeout = 5 * time.Second
	maxPoolSize    = 10
)

type Store struct {
	client *mongo.Client
	kegs   *mongo.Collection
	taps   *mongo.Collection
	logger *zap.Logger
}

type kegDocument struct {
	ID        string `bson:"_id"`
	BeerName  string `bson:"beer_name"`
	Size      string `bson:"size"`
	Quantity  int    `bson:"quantity"`
	OnTap     bool   `bson:"on_tap"`
	TapNumber *int   `bson:"tap_number,omitempty"`
}

type tapDocument struct {
	ID            string  `bson:"_id"`
	Number        int     `bson:"number"`
	AssignedKegID *string `bson:"assigned_keg_id,omitempty"`
	IsLastKeg     bool    `bson:"is_last_keg"`
}

func Open(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout*2)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetMaxPoolSize(maxPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	db := client.Database(database)

	return &Store{
		client: client,
		kegs:   db.Collection("kegs"),
		taps:   db.Collection("taps"),
		logger: logger,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ListKegs(ctx context.Context) ([]model.Keg, error) {
	cursor, err := s.kegs.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongostore: listing kegs: %w", err)
	}

	var docs []kegDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decoding kegs: %w", err)
	}

	kegs := make([]model.Keg, 0, len(docs))
	for _, doc := range docs {
		kegs = append(kegs, model.Keg{
			ID:        doc.ID,
			BeerName:  doc.BeerName,
			Size:      model.KegSize(doc.Size),
			Quantity:  doc.Quantity,
			OnTap:     doc.OnTap,
			TapNumber: doc.TapNumber,
		})
	}

	return kegs, nil
}

func (s *Store) CreateKeg(ctx context.Context, keg model.Keg) (string, error) {
	doc := kegDocument{
		ID:        uuid.NewString(),
		BeerName:  keg.BeerName,
		Size:      string(keg.Size),
		Quantity:  keg.Quantity,
		OnTap:     keg.OnTap,
		TapNumber: keg.TapNumber,
	}

	if _, err := s.kegs.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("mongostore: inserting keg: %w", err)
	}

	return doc.ID, nil
}

func (s *Store) UpdateKeg(ctx context.Context, id string, fields map[string]any) error {
	update := bson.M{}
	for key, value := range fields {
		update[key] = value
	}

	result, err := s.kegs.UpdateByID(ctx, id, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("mongostore: updating keg %s: %w", id, err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("mongostore: keg %s: no such document", id)
	}

	return nil
}

func (s *Store) DeleteKeg(ctx context.Context, id string) error {
	result, err := s.kegs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongostore: deleting keg %s: %w", id, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("mongostore: keg %s: no such document", id)
	}

	return nil
}

func (s *Store) ListTaps(ctx context.Context) ([]model.Tap, error) {
	cursor, err := s.taps.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongostore: listing taps: %w", err)
	}

	var docs []tapDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decoding taps: %w", err)
	}

	taps := make([]model.Tap, 0, len(docs))
	for _, doc := range docs {
		taps = append(taps, model.Tap{
			Number:        doc.Number,
			AssignedKegID: doc.AssignedKegID,
			IsLastKeg:     doc.IsLastKeg,
		})
	}

	return taps, nil
}

func (s *Store) UpsertTap(ctx context.Context, number int, fields map[string]any) error {
	update := bson.M{
		"$setOnInsert": bson.M{"number": number},
	}

	if len(fields) > 0 {
		set := bson.M{}
		for key, value := range fields {
			set[key] = value
		}

		update["$set"] = set
	}

	opts := options.Update().SetUpsert(true)

	if _, err := s.taps.UpdateOne(ctx, bson.M{"_id": strconv.Itoa(number)}, update, opts); err != nil {
		return fmt.Errorf("mongostore: upserting tap %d: %w", number, err)
	}

	return nil
}
