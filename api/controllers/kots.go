package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/axeyQ/restropos-backend/api/middleware"
	"github.com/axeyQ/restropos-backend/api/responses"
	"github.com/axeyQ/restropos-backend/api/validators"
	internalkots "github.com/axeyQ/restropos-backend/internal/kots"
	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/logger"
)

type kotCreateRequest struct {
	OrderID          string   `json:"order_id" validate:"required"`
	ItemIDs          []string `json:"item_ids"`
	Station          string   `json:"station"`
	Priority         int      `json:"priority"`
	EstimatedMinutes int      `json:"estimated_minutes"`
}

func (r kotCreateRequest) toInput(actor *uuid.UUID) (internalkots.CreateInput, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(r.OrderID))
	if err != nil {
		return internalkots.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_id")
	}

	input := internalkots.CreateInput{
		OrderID:          orderID,
		Priority:         r.Priority,
		EstimatedMinutes: r.EstimatedMinutes,
		Actor:            actor,
	}

	if raw := strings.TrimSpace(r.Station); raw != "" {
		station, err := enums.ParseKOTStation(raw)
		if err != nil {
			return internalkots.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid station")
		}
		input.Station = station
	}

	input.ItemIDs = make([]uuid.UUID, 0, len(r.ItemIDs))
	for _, raw := range r.ItemIDs {
		itemID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return internalkots.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
		}
		input.ItemIDs = append(input.ItemIDs, itemID)
	}

	return input, nil
}

type kotStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type kotPrintRequest struct {
	PrintedBy *string `json:"printed_by"`
}

type kotCreateResponse struct {
	KOT      *models.KOT `json:"kot"`
	Warnings []string    `json:"warnings,omitempty"`
}

// KOTCreate routes order items onto a new kitchen ticket.
func KOTCreate(svc internalkots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kot service unavailable"))
			return
		}

		var payload kotCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(middleware.ActorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, kotCreateResponse{
			KOT:      result.KOT,
			Warnings: result.Warnings,
		})
	}
}

// KOTList returns tickets ordered for the kitchen display, urgent first.
func KOTList(svc internalkots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kot service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildKOTFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// KOTDetail returns one ticket with its item snapshot.
func KOTDetail(svc internalkots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kot service unavailable"))
			return
		}

		kotID, err := validators.ParsePathUUID(chi.URLParam(r, "kotId"), "kotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kot, err := svc.GetByID(r.Context(), kotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kot)
	}
}

// KOTStatus advances the ticket through the kitchen workflow.
func KOTStatus(svc internalkots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kot service unavailable"))
			return
		}

		kotID, err := validators.ParsePathUUID(chi.URLParam(r, "kotId"), "kotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload kotStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseKOTStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kot status"))
			return
		}

		kot, err := svc.UpdateStatus(r.Context(), kotID, internalkots.StatusInput{
			Status: status,
			Notes:  payload.Notes,
			Actor:  middleware.ActorIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kot)
	}
}

// KOTPrint records a ticket print for reprint tracking.
func KOTPrint(svc internalkots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kot service unavailable"))
			return
		}

		kotID, err := validators.ParsePathUUID(chi.URLParam(r, "kotId"), "kotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload kotPrintRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kot, err := svc.MarkPrinted(r.Context(), kotID, internalkots.PrintInput{
			PrintedBy: payload.PrintedBy,
			Actor:     middleware.ActorIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kot)
	}
}

func buildKOTFilters(r *http.Request) (internalkots.ListFilters, error) {
	filters := internalkots.ListFilters{}

	if raw := strings.TrimSpace(r.URL.Query().Get("station")); raw != "" {
		station, err := enums.ParseKOTStation(raw)
		if err != nil {
			return internalkots.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid station filter")
		}
		filters.Station = &station
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseKOTStatus(raw)
		if err != nil {
			return internalkots.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}

	var err error
	if filters.OrderID, err = validators.ParseQueryUUID(r, "order_id"); err != nil {
		return internalkots.ListFilters{}, err
	}
	if filters.DateFrom, err = validators.ParseQueryDate(r, "date_from"); err != nil {
		return internalkots.ListFilters{}, err
	}
	if filters.DateTo, err = validators.ParseQueryDate(r, "date_to"); err != nil {
		return internalkots.ListFilters{}, err
	}

	return filters, nil
}
