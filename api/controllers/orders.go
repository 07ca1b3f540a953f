package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/axeyQ/restropos-backend/api/middleware"
	"github.com/axeyQ/restropos-backend/api/responses"
	"github.com/axeyQ/restropos-backend/api/validators"
	internalorders "github.com/axeyQ/restropos-backend/internal/orders"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

type orderItemRequest struct {
	DishID       string          `json:"dish_id" validate:"required"`
	DishName     string          `json:"dish_name" validate:"required"`
	VariantID    *string         `json:"variant_id"`
	VariantName  *string         `json:"variant_name"`
	Quantity     int             `json:"quantity" validate:"required,min=1"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	AddOns       types.AddOns    `json:"add_ons"`
	Instructions *string         `json:"instructions"`
}

func (r orderItemRequest) toInput() (internalorders.ItemInput, error) {
	dishID, err := uuid.Parse(strings.TrimSpace(r.DishID))
	if err != nil {
		return internalorders.ItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dish_id")
	}
	item := internalorders.ItemInput{
		DishID:       dishID,
		DishName:     strings.TrimSpace(r.DishName),
		VariantName:  r.VariantName,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		AddOns:       r.AddOns,
		Instructions: r.Instructions,
	}
	if r.VariantID != nil {
		variantID, err := uuid.Parse(strings.TrimSpace(*r.VariantID))
		if err != nil {
			return internalorders.ItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant_id")
		}
		item.VariantID = &variantID
	}
	return item, nil
}

type orderDiscountRequest struct {
	Type   string          `json:"type" validate:"required"`
	Value  decimal.Decimal `json:"value"`
	Reason *string         `json:"reason"`
}

func (r orderDiscountRequest) toInput() (*internalorders.DiscountInput, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(r.Type))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	return &internalorders.DiscountInput{
		Type:   discountType,
		Value:  r.Value,
		Reason: r.Reason,
	}, nil
}

type orderChargesRequest struct {
	Delivery  decimal.Decimal `json:"delivery"`
	Packaging decimal.Decimal `json:"packaging"`
	Service   decimal.Decimal `json:"service"`
	Tip       decimal.Decimal `json:"tip"`
}

func (r orderChargesRequest) toInput() internalorders.ChargesInput {
	return internalorders.ChargesInput{
		Delivery:  r.Delivery,
		Packaging: r.Packaging,
		Service:   r.Service,
		Tip:       r.Tip,
	}
}

type orderCreateRequest struct {
	OrderType          string                `json:"order_type" validate:"required"`
	Customer           types.Customer        `json:"customer"`
	TableID            *string               `json:"table_id"`
	TableName          *string               `json:"table_name"`
	ServerID           *string               `json:"server_id"`
	CaptainID          *string               `json:"captain_id"`
	ThirdPartyProvider *string               `json:"third_party_provider"`
	ExternalOrderID    *string               `json:"external_order_id"`
	Items              []orderItemRequest    `json:"items" validate:"required,min=1"`
	Discount           *orderDiscountRequest `json:"discount"`
	Charges            *orderChargesRequest  `json:"charges"`
}

func (r orderCreateRequest) toInput(actor *uuid.UUID) (internalorders.CreateInput, error) {
	orderType, err := enums.ParseOrderType(strings.TrimSpace(r.OrderType))
	if err != nil {
		return internalorders.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}

	input := internalorders.CreateInput{
		OrderType:          orderType,
		Customer:           r.Customer,
		TableName:          r.TableName,
		ThirdPartyProvider: r.ThirdPartyProvider,
		ExternalOrderID:    r.ExternalOrderID,
		Actor:              actor,
	}

	if input.TableID, err = parseOptionalUUID(r.TableID, "table_id"); err != nil {
		return internalorders.CreateInput{}, err
	}
	if input.ServerID, err = parseOptionalUUID(r.ServerID, "server_id"); err != nil {
		return internalorders.CreateInput{}, err
	}
	if input.CaptainID, err = parseOptionalUUID(r.CaptainID, "captain_id"); err != nil {
		return internalorders.CreateInput{}, err
	}

	input.Items = make([]internalorders.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		mapped, err := item.toInput()
		if err != nil {
			return internalorders.CreateInput{}, err
		}
		input.Items = append(input.Items, mapped)
	}

	if r.Discount != nil {
		if input.Discount, err = r.Discount.toInput(); err != nil {
			return internalorders.CreateInput{}, err
		}
	}
	if r.Charges != nil {
		input.Charges = r.Charges.toInput()
	}

	return input, nil
}

type orderUpdateRequest struct {
	Customer  *types.Customer       `json:"customer"`
	TableID   *string               `json:"table_id"`
	TableName *string               `json:"table_name"`
	ServerID  *string               `json:"server_id"`
	CaptainID *string               `json:"captain_id"`
	Items     []orderItemRequest    `json:"items"`
	Discount  *orderDiscountRequest `json:"discount"`
	Charges   *orderChargesRequest  `json:"charges"`
}

func (r orderUpdateRequest) toInput(actor *uuid.UUID) (internalorders.UpdateInput, error) {
	input := internalorders.UpdateInput{
		Customer:  r.Customer,
		TableName: r.TableName,
		Actor:     actor,
	}

	var err error
	if input.TableID, err = parseOptionalUUID(r.TableID, "table_id"); err != nil {
		return internalorders.UpdateInput{}, err
	}
	if input.ServerID, err = parseOptionalUUID(r.ServerID, "server_id"); err != nil {
		return internalorders.UpdateInput{}, err
	}
	if input.CaptainID, err = parseOptionalUUID(r.CaptainID, "captain_id"); err != nil {
		return internalorders.UpdateInput{}, err
	}

	if r.Items != nil {
		input.Items = make([]internalorders.ItemInput, 0, len(r.Items))
		for _, item := range r.Items {
			mapped, err := item.toInput()
			if err != nil {
				return internalorders.UpdateInput{}, err
			}
			input.Items = append(input.Items, mapped)
		}
	}

	if r.Discount != nil {
		if input.Discount, err = r.Discount.toInput(); err != nil {
			return internalorders.UpdateInput{}, err
		}
	}
	if r.Charges != nil {
		charges := r.Charges.toInput()
		input.Charges = &charges
	}

	return input, nil
}

type orderStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason"`
	Notes  string  `json:"notes"`
}

type orderPaymentRequest struct {
	Method        string          `json:"method" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID *string         `json:"transaction_id"`
}

// OrderCreate opens a new order and prices it.
func OrderCreate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(middleware.ActorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns a filtered page of orders, newest first.
func OrderList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildOrderFilters(r)
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

// OrderDetail returns one order with its items and invoice link.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderUpdate applies a partial patch and reprices the order.
func OrderUpdate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(middleware.ActorIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Update(r.Context(), orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderStatus transitions the order lifecycle state.
func OrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, internalorders.StatusInput{
			Status: status,
			Reason: payload.Reason,
			Notes:  payload.Notes,
			Actor:  middleware.ActorIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderPayment records one settlement against the order.
func OrderPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}

		order, err := svc.RecordPayment(r.Context(), orderID, internalorders.PaymentInput{
			Method:        method,
			Amount:        payload.Amount,
			TransactionID: payload.TransactionID,
			Actor:         middleware.ActorIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func buildOrderFilters(r *http.Request) (internalorders.ListFilters, error) {
	filters := internalorders.ListFilters{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return internalorders.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("order_type")); raw != "" {
		orderType, err := enums.ParseOrderType(raw)
		if err != nil {
			return internalorders.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order_type filter")
		}
		filters.OrderType = &orderType
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		paymentStatus, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return internalorders.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment_status filter")
		}
		filters.PaymentStatus = &paymentStatus
	}

	var err error
	if filters.TableID, err = validators.ParseQueryUUID(r, "table_id"); err != nil {
		return internalorders.ListFilters{}, err
	}
	if filters.DateFrom, err = validators.ParseQueryDate(r, "date_from"); err != nil {
		return internalorders.ListFilters{}, err
	}
	if filters.DateTo, err = validators.ParseQueryDate(r, "date_to"); err != nil {
		return internalorders.ListFilters{}, err
	}

	return filters, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &id, nil
}
