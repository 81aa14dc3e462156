package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/report-map/internal/db"
	"github.com/ukydev/report-map/internal/feed"
	"github.com/ukydev/report-map/internal/middleware"
	"github.com/ukydev/report-map/internal/models"
)

// ReportHandler serves the report API.
type ReportHandler struct {
	store db.ReportCollection
	feed  feed.Publisher
	log   *logrus.Entry

	publishing sync.WaitGroup
}

// NewReportHandler creates a report handler. A nil publisher disables the feed.
func NewReportHandler(store db.ReportCollection, publisher feed.Publisher, log *logrus.Entry) *ReportHandler {
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ReportHandler{store: store, feed: publisher, log: log}
}

// Create stores the report in the request body.
// Input fields are not validated; casting failures come back from the store.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.WithError(err).Error("Failed to read request body")
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	in, err := models.DecodeReportInput(body)
	if err != nil {
		log.WithError(err).Warn("Failed to decode report")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	report, err := h.store.InsertReport(r.Context(), in)
	if err != nil {
		log.WithError(err).Error("Failed to insert report")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log = log.WithField("report_id", report.ID.Hex())
	log.Info("Report created")

	writeJSON(w, http.StatusCreated, report)
	h.publish(context.WithoutCancel(r.Context()), log, *report)
}

// List returns every stored report.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.ListReports(r.Context())
	if err != nil {
		h.requestLog(r).WithError(err).Error("Failed to list reports")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// publish runs in the background so a slow broker never delays the response.
// The publisher bounds each attempt with its own timeout.
func (h *ReportHandler) publish(ctx context.Context, log *logrus.Entry, report models.Report) {
	h.publishing.Add(1)
	go func() {
		defer h.publishing.Done()
		if err := h.feed.PublishReport(ctx, report); err != nil {
			log.WithError(err).Warn("Failed to publish report")
		}
	}()
}

// Wait blocks until every in-flight feed publication has finished.
func (h *ReportHandler) Wait() {
	h.publishing.Wait()
}

func (h *ReportHandler) requestLog(r *http.Request) *logrus.Entry {
	if id, ok := middleware.GetRequestID(r.Context()); ok {
		return h.log.WithField("request_id", id)
	}
	return h.log
}
