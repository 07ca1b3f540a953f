package kots

import (
	"time"

	"github.com/google/uuid"

	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
)

// CreateInput routes order items onto a new kitchen ticket. An empty
// ItemIDs list means every item that has no ticket yet.
type CreateInput struct {
	OrderID          uuid.UUID
	ItemIDs          []uuid.UUID
	Station          enums.KOTStation
	Priority         int
	EstimatedMinutes int
	Actor            *uuid.UUID
}

// CreateResult carries the new ticket plus per-item warnings for lines
// that were skipped instead of failing the whole request.
type CreateResult struct {
	KOT      *models.KOT
	Warnings []string
}

// StatusInput requests a ticket state change.
type StatusInput struct {
	Status enums.KOTStatus
	Notes  string
	Actor  *uuid.UUID
}

// PrintInput records a ticket print.
type PrintInput struct {
	PrintedBy *string
	Actor     *uuid.UUID
}

// ListFilters describe the inputs supported by the ticket list.
type ListFilters struct {
	OrderID  *uuid.UUID
	Station  *enums.KOTStation
	Status   *enums.KOTStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// List wraps a page of tickets plus paging totals.
type List struct {
	KOTs        []models.KOT `json:"kots"`
	TotalCount  int64        `json:"totalCount"`
	PageCount   int          `json:"pageCount"`
	CurrentPage int          `json:"currentPage"`
	Limit       int          `json:"limit"`
}
