package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/report-map/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to MongoDB at uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoReportCollection stores reports in a MongoDB collection.
type MongoReportCollection struct {
	Collection *mongo.Collection
	// Now returns the creation time for new reports. Defaults to time.Now.
	Now func() time.Time
}

// NewMongoReportCollection wraps coll as a ReportCollection.
func NewMongoReportCollection(coll *mongo.Collection) *MongoReportCollection {
	return &MongoReportCollection{Collection: coll, Now: time.Now}
}

// EnsureIndexes creates the createdAt index used to list reports in insertion order.
func (c *MongoReportCollection) EnsureIndexes(ctx context.Context) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create createdAt index: %w", err)
	}
	return nil
}

// InsertReport casts in, assigns an ID and creation time, and stores the report.
func (c *MongoReportCollection) InsertReport(ctx context.Context, in models.ReportInput) (*models.Report, error) {
	if c.Collection == nil {
		return nil, storeErr("insert", errNilCollection)
	}
	report, err := in.Cast()
	if err != nil {
		return nil, storeErr("insert", err)
	}
	report.ID = primitive.NewObjectID()
	report.CreatedAt = c.now()

	if _, err := c.Collection.InsertOne(ctx, report); err != nil {
		return nil, storeErr("insert", err)
	}
	return &report, nil
}

// ListReports returns every stored report, oldest first.
func (c *MongoReportCollection) ListReports(ctx context.Context) ([]models.Report, error) {
	if c.Collection == nil {
		return nil, storeErr("list", errNilCollection)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("list", err)
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, storeErr("list", err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

// Ping checks that the MongoDB deployment is reachable.
func (c *MongoReportCollection) Ping(ctx context.Context) error {
	if c.Collection == nil {
		return storeErr("ping", errNilCollection)
	}
	if err := c.Collection.Database().Client().Ping(ctx, nil); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// BSON datetimes hold milliseconds, so the returned record matches what is read back.
func (c *MongoReportCollection) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().UTC().Truncate(time.Millisecond)
}
