package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ledgerline/budget-engine-go/internal/service"
)

// ============================================================
// Period & view endpoints
// ============================================================

// resolvePeriodHandler answers GET /v1/budgets/{budgetId}/period.
func resolvePeriodHandler(views *service.ViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.ResolvePeriod")
		defer span.End()

		budgetID := chi.URLParam(r, "budgetId")
		span.SetAttributes(attribute.String("budget.id", budgetID))

		date, offset, useOffset, err := parseViewQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if useOffset {
			period, err := views.ResolvePeriodByOffset(ctx, budgetID, offset)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			writeJSON(w, http.StatusOK, period)
			return
		}
		if date.IsZero() {
			date = time.Now().UTC()
		}
		period, err := views.ResolvePeriod(ctx, budgetID, date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, period)
	}
}

// periodViewHandler answers GET /v1/budgets/{budgetId}/view.
func periodViewHandler(views *service.ViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.PeriodView")
		defer span.End()

		budgetID := chi.URLParam(r, "budgetId")
		span.SetAttributes(attribute.String("budget.id", budgetID))

		date, offset, useOffset, err := parseViewQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if useOffset {
			summary, err := views.BuildViewByOffset(ctx, budgetID, offset)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			writeJSON(w, http.StatusOK, summary)
			return
		}
		if date.IsZero() {
			date = time.Now().UTC()
		}
		summary, err := views.BuildViewAt(ctx, budgetID, date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
