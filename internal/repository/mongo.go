package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkin-api/internal/database"
	"checkin-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// namespaceExists is the server error code for creating a collection twice.
const namespaceExists = 48

type mongoCapture struct {
	ID                   primitive.ObjectID `bson:"_id"`
	models.CaptureRecord `bson:",inline"`
}

// MongoRepository stores capture records in a single MongoDB collection.
type MongoRepository struct {
	conn   *database.Lazy[*mongo.Client]
	dbName string
	now    func() time.Time
}

// NewMongoRepository creates a repository whose client is established on first use.
func NewMongoRepository(uri, dbName string, timeout time.Duration) *MongoRepository {
	r := &MongoRepository{dbName: dbName, now: time.Now}
	r.conn = database.NewLazy(
		func(ctx context.Context) (*mongo.Client, error) {
			client, err := database.ConnectMongo(ctx, uri, timeout)
			if err != nil {
				return nil, err
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := ensureCollection(ctx, client.Database(dbName)); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, err
			}
			return client, nil
		},
		func(ctx context.Context, c *mongo.Client) error { return c.Disconnect(ctx) },
	)
	return r
}

// ensureCollection creates the locations collection with a schema validator
// requiring numeric coordinates, and the index backing newest-first listing.
func ensureCollection(ctx context.Context, db *mongo.Database) error {
	validator := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"latitude", "longitude"},
			"properties": bson.M{
				"latitude":  bson.M{"bsonType": "number"},
				"longitude": bson.M{"bsonType": "number"},
			},
		},
	}
	err := db.CreateCollection(ctx, models.CollectionName, options.CreateCollection().SetValidator(validator))
	var se mongo.ServerError
	if err != nil && !(errors.As(err, &se) && se.HasErrorCode(namespaceExists)) {
		return fmt.Errorf("repository: failed to create collection: %w", err)
	}

	idx := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	if _, err := db.Collection(models.CollectionName).Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("repository: failed to create index: %w", err)
	}
	return nil
}

func (r *MongoRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := r.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: store unavailable: %w", err)
	}
	return client.Database(r.dbName).Collection(models.CollectionName), nil
}

// Create inserts one capture record and returns it with its assigned id and timestamps.
func (r *MongoRepository) Create(ctx context.Context, rec *models.CaptureRecord) (*models.CaptureRecord, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoCapture{ID: primitive.NewObjectID(), CaptureRecord: *rec}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Timestamp.IsZero() {
		doc.Timestamp = now
	}

	if _, err := col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("repository: failed to insert capture record: %w", err)
	}
	return doc.record(), nil
}

// List returns every capture record, newest first.
func (r *MongoRepository) List(ctx context.Context) ([]models.CaptureRecord, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute list query: %w", err)
	}
	defer cur.Close(ctx)

	records := []models.CaptureRecord{}
	for cur.Next(ctx) {
		var doc mongoCapture
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("repository: failed to decode capture record: %w", err)
		}
		records = append(records, *doc.record())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cursor: %w", err)
	}
	return records, nil
}

// Get returns the capture record with the given id.
func (r *MongoRepository) Get(ctx context.Context, id string) (*models.CaptureRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc mongoCapture
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to find capture record: %w", err)
	}
	return doc.record(), nil
}

// Health reports the connection state and the collections of the database.
func (r *MongoRepository) Health(ctx context.Context) (*models.DatabaseHealth, error) {
	client, err := r.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: store unavailable: %w", err)
	}

	names, err := client.Database(r.dbName).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list collections: %w", err)
	}

	return &models.DatabaseHealth{
		Name:        r.dbName,
		State:       r.conn.State().String(),
		Collections: names,
	}, nil
}

// Close disconnects the client if it was established.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (d *mongoCapture) record() *models.CaptureRecord {
	rec := d.CaptureRecord
	rec.ID = d.ID.Hex()
	if rec.DeviceInfo == nil {
		rec.DeviceInfo = models.DeviceInfo{}
	}
	return &rec
}
