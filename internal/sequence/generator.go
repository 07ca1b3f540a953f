// Package sequence issues gap-free daily document numbers backed by a
// counters table. Each (scope, day) pair is incremented atomically with
// a single upsert, so concurrent callers never observe the same value.
// Numbers are issued before the document is written; an aborted write
// leaves a gap in the sequence, never a duplicate.
package sequence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/axeyQ/restropos-backend/pkg/enums"
	pkgerrors "github.com/axeyQ/restropos-backend/pkg/errors"
)

const dayFormat = "060102"

const (
	scopeOrder   = "order"
	scopeInvoice = "invoice"
	scopeKOT     = "kot"
)

// Clock abstracts time.Now so tests can pin the business day.
type Clock func() time.Time

// Generator hands out order, KOT and invoice numbers.
type Generator struct {
	db  *gorm.DB
	now Clock
}

// New builds a Generator over the provided DB connection.
func New(db *gorm.DB) *Generator {
	return &Generator{db: db, now: time.Now}
}

// WithClock returns a copy of the generator using the supplied clock.
func (g *Generator) WithClock(now Clock) *Generator {
	return &Generator{db: g.db, now: now}
}

// OrderNumber issues the next ORD-YYMMDD-NNNN number.
func (g *Generator) OrderNumber(ctx context.Context) (string, error) {
	return g.nextFormatted(ctx, scopeOrder, "ORD")
}

// InvoiceNumber issues the next INV-YYMMDD-NNNN number.
func (g *Generator) InvoiceNumber(ctx context.Context) (string, error) {
	return g.nextFormatted(ctx, scopeInvoice, "INV")
}

// KOTNumber issues the next KOT-<type code>-YYMMDD-NNNN number. Each
// order type runs its own daily sequence, so dine-in and delivery
// tickets number independently.
func (g *Generator) KOTNumber(ctx context.Context, orderType enums.OrderType) (string, error) {
	day := g.now().Format(dayFormat)
	value, err := g.next(ctx, scopeKOT+":"+orderType.Code(), day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("KOT-%s-%s-%04d", orderType.Code(), day, value), nil
}

func (g *Generator) nextFormatted(ctx context.Context, scope, prefix string) (string, error) {
	day := g.now().Format(dayFormat)
	value, err := g.next(ctx, scope, day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, day, value), nil
}

func (g *Generator) next(ctx context.Context, scope, day string) (int64, error) {
	var value int64
	err := g.db.WithContext(ctx).Raw(`
		INSERT INTO counters (scope, day, value)
		VALUES (?, ?, 1)
		ON CONFLICT (scope, day)
		DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, scope, day).Scan(&value).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment counter")
	}
	return value, nil
}
