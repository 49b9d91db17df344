package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/cart-backend/internal/domain/aggregates"
	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/platform/dbctx"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "Commerce.Cart.Test", func(_ dbctx.Context) error { return nil })
	if err != nil {
		t.Fatalf("executeWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
}

func TestExecuteWriteMapsEmptyCart(t *testing.T) {
	hooks := &spyHooks{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "Commerce.Cart.Checkout", func(_ dbctx.Context) error {
		return types.ErrEmptyCart
	})
	if !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("expected precondition_failed, got=%v", err)
	}
	if !errors.Is(err, types.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart to stay reachable, got=%v", err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodePreconditionFailed) {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestExecuteWriteTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, "Commerce.Cart.FindOrCreate", func(_ dbctx.Context) error {
			return fmt.Errorf("insert cart: %w", gorm.ErrDuplicatedKey)
		})
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "Commerce.Cart.FindOrCreate" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
	})

	t.Run("retryable", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, "Commerce.Cart.Update", func(_ dbctx.Context) error {
			return RetryableError("database is locked")
		})
		if !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("expected retryable code, got=%v", err)
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0] != "Commerce.Cart.Update" {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
		if len(hooks.Conflicts) != 0 {
			t.Fatalf("conflict hooks should be empty, got=%+v", hooks.Conflicts)
		}
	})
}

func TestExecuteWriteDefaultsOpName(t *testing.T) {
	hooks := &spyHooks{}
	_ = executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "  ", func(_ dbctx.Context) error { return nil })
	if len(hooks.Operations) != 1 || hooks.Operations[0].Name != "aggregate.write" {
		t.Fatalf("unexpected op: %+v", hooks.Operations)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(ValidationError("x")); got != string(domainagg.CodeValidation) {
		t.Fatalf("validation status: got=%s", got)
	}
	if got := aggregateErrorStatus(gorm.ErrDuplicatedKey); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

func TestSplitOp(t *testing.T) {
	agg, op := splitOp("Commerce.Cart.Checkout")
	if agg != "Commerce.Cart" || op != "Checkout" {
		t.Fatalf("splitOp: got=%q %q", agg, op)
	}
	if agg, op := splitOp("plain"); agg != "unknown" || op != "plain" {
		t.Fatalf("splitOp plain: got=%q %q", agg, op)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
