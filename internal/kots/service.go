package kots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/internal/orders"
	"github.com/axeyQ/restropos-backend/pkg/db/models"
	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	"github.com/axeyQ/restropos-backend/pkg/metrics"
	"github.com/axeyQ/restropos-backend/pkg/pagination"
	"github.com/axeyQ/restropos-backend/pkg/types"
)

const (
	defaultPriority = 2
	minPriority     = 1
	maxPriority     = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	orders  orders.Repository
	tx      txRunner
	numbers NumberSource
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the KOT service with its required dependencies.
// Metrics may be nil; every other dependency is mandatory.
func NewService(repo Repository, ordersRepo orders.Repository, tx txRunner, numbers NumberSource, m *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("kots repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("number source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		orders:  ordersRepo,
		tx:      tx,
		numbers: numbers,
		metrics: m,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	station := input.Station
	if station == "" {
		station = enums.KOTStationKitchen
	}
	if !station.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid station %q", input.Station)
	}
	priority := input.Priority
	if priority == 0 {
		priority = defaultPriority
	}
	if priority < minPriority || priority > maxPriority {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "priority must be between %d and %d", minPriority, maxPriority)
	}

	var result *CreateResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		order, err := ordersRepo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot create KOT for order in %s state", order.Status)
		}

		selected, skipped, err := selectItems(order, input.ItemIDs)
		if err != nil {
			return err
		}

		number, err := s.numbers.KOTNumber(ctx, order.OrderType)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue kot number")
		}

		now := s.now().UTC()
		kot := &models.KOT{
			KOTNumber:   number,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OrderType:   order.OrderType,
			TableName:   order.TableName,
			Customer:    order.Customer,
			Items:       buildKOTItems(selected),
			Status:      enums.KOTStatusPending,
			Station:     station,
			Priority:    priority,
			StatusHistory: types.StatusHistory{}.
				Append(enums.KOTStatusPending.String(), input.Actor, "KOT created", now),
			CreatedBy: input.Actor,
		}
		if input.EstimatedMinutes > 0 {
			estimated := now.Add(time.Duration(input.EstimatedMinutes) * time.Minute)
			kot.EstimatedCompletionTime = &estimated
		}

		if err := s.repo.WithTx(tx).Create(ctx, kot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create kot")
		}

		itemIDs := make([]uuid.UUID, 0, len(selected))
		for _, item := range selected {
			itemIDs = append(itemIDs, item.ID)
		}
		if err := ordersRepo.UpdateItemsKOTFlag(ctx, itemIDs, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag order items")
		}

		result = &CreateResult{KOT: kot, Warnings: skipped}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncKOTCreated(result.KOT.Station.String())
	ctx = s.logg.WithOrderID(ctx, result.KOT.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("kot %s created with %d items", result.KOT.KOTNumber, len(result.KOT.Items)))
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.KOT, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kot id required")
	}
	kot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "kot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kot")
	}
	return kot, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	params = params.Normalize()
	result, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list kots")
	}
	return &List{
		KOTs:        result,
		TotalCount:  total,
		PageCount:   pagination.PageCount(total, params.Limit),
		CurrentPage: params.Page,
		Limit:       params.Limit,
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*models.KOT, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kot id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid kot status %q", input.Status)
	}

	var updated *models.KOT
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		kot, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "kot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kot")
		}
		if !kot.Status.CanTransitionTo(input.Status) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot transition kot from %s to %s", kot.Status, input.Status)
		}

		now := s.now().UTC()
		kot.Status = input.Status
		kot.StatusHistory = kot.StatusHistory.Append(input.Status.String(), input.Actor, input.Notes, now)

		// Timestamps are set once; replays of the same step elsewhere
		// must not rewrite them.
		switch input.Status {
		case enums.KOTStatusPreparing:
			if kot.PreparationStartTime == nil {
				kot.PreparationStartTime = &now
			}
		case enums.KOTStatusReady, enums.KOTStatusCompleted:
			if kot.CompletionTime == nil {
				kot.CompletionTime = &now
			}
		}

		// The ticket's status drags every live item with it.
		for i := range kot.Items {
			if kot.Items[i].Status != enums.KOTStatusCancelled {
				kot.Items[i].Status = input.Status
			}
		}

		if err := repo.Save(ctx, kot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save kot")
		}

		s.checkAndPromoteOrder(ctx, tx, kot, input.Actor)
		updated = kot
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, updated.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("kot %s moved to %s", updated.KOTNumber, updated.Status))
	return updated, nil
}

func (s *service) MarkPrinted(ctx context.Context, id uuid.UUID, input PrintInput) (*models.KOT, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kot id required")
	}

	var updated *models.KOT
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		kot, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "kot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kot")
		}

		now := s.now().UTC()
		kot.Printed = true
		if kot.PrintedAt == nil {
			kot.PrintedAt = &now
		}
		kot.PrintCount++
		if input.PrintedBy != nil {
			kot.PrintedBy = input.PrintedBy
		}

		if err := repo.Save(ctx, kot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save kot print state")
		}
		updated = kot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkAndPromoteOrder moves the parent order forward from kitchen
// progress. This is a derived update, not a caller request, so it may
// take steps the public transition table forbids (pending straight to
// ready). Failures are logged and swallowed; the ticket update stands.
func (s *service) checkAndPromoteOrder(ctx context.Context, tx *gorm.DB, kot *models.KOT, actor *uuid.UUID) {
	ordersRepo := s.orders.WithTx(tx)
	order, err := ordersRepo.FindByID(ctx, kot.OrderID)
	if err != nil {
		s.logg.Error(ctx, "load order for kot promotion", err)
		return
	}
	if order.Status.IsTerminal() || order.Status == enums.OrderStatusReady ||
		order.Status == enums.OrderStatusServed {
		return
	}

	now := s.now().UTC()
	switch kot.Status {
	case enums.KOTStatusPreparing:
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusConfirmed {
			return
		}
		order.Status = enums.OrderStatusPreparing
		order.StatusHistory = order.StatusHistory.Append(
			enums.OrderStatusPreparing.String(), actor, "Preparation started", now)
	case enums.KOTStatusReady, enums.KOTStatusCompleted:
		done, err := s.allTicketsResolved(ctx, tx, order.ID)
		if err != nil {
			s.logg.Error(ctx, "check order kots for promotion", err)
			return
		}
		// A single ready ticket is enough to surface the order to the
		// pass; the note distinguishes full from partial completion.
		note := "All KOTs completed"
		if !done {
			note = "Items ready for service"
		}
		order.Status = enums.OrderStatusReady
		order.StatusHistory = order.StatusHistory.Append(
			enums.OrderStatusReady.String(), actor, note, now)
	default:
		return
	}

	if err := ordersRepo.Save(ctx, order); err != nil {
		s.logg.Error(ctx, "promote order from kot progress", err)
		return
	}
	s.metrics.IncOrderStatus(order.Status.String())
}

// allTicketsResolved reports whether every non-cancelled ticket of the
// order has reached ready or completed.
func (s *service) allTicketsResolved(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (bool, error) {
	tickets, err := s.repo.WithTx(tx).FindByOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	live := 0
	for _, ticket := range tickets {
		if ticket.Status == enums.KOTStatusCancelled {
			continue
		}
		live++
		if ticket.Status != enums.KOTStatusReady && ticket.Status != enums.KOTStatusCompleted {
			return false, nil
		}
	}
	return live > 0, nil
}

// selectItems resolves the requested item ids against the order. Items
// that already have a ticket are skipped with a warning instead of
// failing the request; the warnings are aggregated so the caller sees
// every skipped line at once.
func selectItems(order *models.Order, itemIDs []uuid.UUID) ([]models.OrderItem, []string, error) {
	byID := make(map[uuid.UUID]models.OrderItem, len(order.Items))
	for _, item := range order.Items {
		byID[item.ID] = item
	}

	var selected []models.OrderItem
	var skipErr error

	if len(itemIDs) == 0 {
		for _, item := range order.Items {
			if item.KOTGenerated {
				continue
			}
			selected = append(selected, item)
		}
		if len(selected) == 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "every order item already has a KOT")
		}
		return selected, nil, nil
	}

	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "item %s does not belong to order", id)
		}
		if item.KOTGenerated {
			skipErr = multierr.Append(skipErr, fmt.Errorf("item %s (%s) already has a KOT", item.ID, item.DishName))
			continue
		}
		selected = append(selected, item)
	}
	if len(selected) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "every requested item already has a KOT")
	}

	warnings := make([]string, 0)
	for _, err := range multierr.Errors(skipErr) {
		warnings = append(warnings, err.Error())
	}
	return selected, warnings, nil
}

func buildKOTItems(items []models.OrderItem) models.KOTItems {
	out := make(models.KOTItems, 0, len(items))
	for _, item := range items {
		out = append(out, models.KOTItem{
			OrderItemID:  item.ID,
			DishName:     item.DishName,
			VariantName:  item.VariantName,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
			Status:       enums.KOTStatusPending,
		})
	}
	return out
}
