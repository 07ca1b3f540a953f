package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
)

// CreateInput requests an invoice for a settled or settling order.
type CreateInput struct {
	OrderID        uuid.UUID
	AdditionalInfo *string
	Actor          *uuid.UUID
}

// EmailInput records that the invoice was emailed to the customer.
type EmailInput struct {
	SentTo string
	Actor  *uuid.UUID
}

// ListFilters describe the inputs supported by the invoice list.
type ListFilters struct {
	Status   *enums.InvoiceStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Query    string
}

// List wraps a page of invoices plus paging totals.
type List struct {
	Invoices    []models.Invoice `json:"invoices"`
	TotalCount  int64            `json:"totalCount"`
	PageCount   int              `json:"pageCount"`
	CurrentPage int              `json:"currentPage"`
	Limit       int              `json:"limit"`
}
