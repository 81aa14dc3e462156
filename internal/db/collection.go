package db

import (
	"context"

	"github.com/ukydev/report-map/internal/models"
)

// ReportCollection defines the interface for report data operations.
type ReportCollection interface {
	InsertReport(ctx context.Context, in models.ReportInput) (*models.Report, error)
	ListReports(ctx context.Context) ([]models.Report, error)
	Ping(ctx context.Context) error
}
