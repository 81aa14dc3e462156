package db

import (
	"context"
	"sync"
	"time"

	"github.com/ukydev/report-map/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryReportCollection keeps reports in process memory, in insertion order.
// It is meant for local development and tests.
type MemoryReportCollection struct {
	mu      sync.RWMutex
	reports []models.Report
	failure error
	now     func() time.Time
}

// NewMemoryReportCollection returns an empty in-memory store.
func NewMemoryReportCollection() *MemoryReportCollection {
	return &MemoryReportCollection{now: time.Now}
}

// SetFailure makes every following operation fail with err until it is
// called again with nil.
func (c *MemoryReportCollection) SetFailure(err error) {
	c.mu.Lock()
	c.failure = err
	c.mu.Unlock()
}

// InsertReport casts in and appends the resulting report.
func (c *MemoryReportCollection) InsertReport(ctx context.Context, in models.ReportInput) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("insert", err)
	}
	report, err := in.Cast()
	if err != nil {
		return nil, storeErr("insert", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return nil, storeErr("insert", c.failure)
	}
	report.ID = primitive.NewObjectID()
	report.CreatedAt = c.now().UTC().Truncate(time.Millisecond)
	c.reports = append(c.reports, report)
	return &report, nil
}

// ListReports returns a copy of all stored reports.
func (c *MemoryReportCollection) ListReports(ctx context.Context) ([]models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("list", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failure != nil {
		return nil, storeErr("list", c.failure)
	}
	out := make([]models.Report, len(c.reports))
	copy(out, c.reports)
	return out, nil
}

// Ping fails only while a failure is injected.
func (c *MemoryReportCollection) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return storeErr("ping", c.failure)
}
