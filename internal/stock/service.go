package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/bufferstock-backend/internal/inventory"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/pkg/config"
	"github.com/angelmondragon/bufferstock-backend/pkg/db"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
	"github.com/angelmondragon/bufferstock-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Actor identifies the principal attempting a movement. Authorization policy
// is decided upstream; the coordinator only honors the capability bit.
type Actor struct {
	Name     string
	CanWrite bool
}

// MovementInput carries a stock-in or stock-out request.
type MovementInput struct {
	PartCode       string
	Qty            int
	Applicant      string
	HandoverPerson string
	Operator       string
	Floor          string
	DeliveryTAT    string
	Remark         string
}

// ReconcileResult reports the outcome of a single part reconciliation.
type ReconcileResult struct {
	PartCode  string `json:"part_code"`
	StoredQty int    `json:"stored_qty"`
	LedgerQty int    `json:"ledger_qty"`
	Repaired  bool   `json:"repaired"`
}

// Service is the only component allowed to mutate part quantities. Every
// mutation appends a ledger record and updates the balance in one transaction.
type Service interface {
	StockIn(ctx context.Context, actor Actor, input MovementInput) (*models.StockMovement, error)
	StockOut(ctx context.Context, actor Actor, input MovementInput) (*models.StockMovement, error)
	Reconcile(ctx context.Context, partCode string) (*ReconcileResult, error)
	ReconcileAll(ctx context.Context) ([]ReconcileResult, error)
}

type service struct {
	client    *db.Client
	parts     inventory.Repository
	movements ledger.Repository
	lock      *KeyedLock
	lockWait  time.Duration
	metrics   *metrics.StockMetrics
	logg      *logger.Logger
}

// NewService wires the transaction coordinator.
func NewService(
	client *db.Client,
	parts inventory.Repository,
	movements ledger.Repository,
	cfg config.StockConfig,
	stockMetrics *metrics.StockMetrics,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if parts == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if movements == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	wait := cfg.LockWaitTimeout
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &service{
		client:    client,
		parts:     parts,
		movements: movements,
		lock:      NewKeyedLock(),
		lockWait:  wait,
		metrics:   stockMetrics,
		logg:      logg,
	}, nil
}

func (s *service) StockIn(ctx context.Context, actor Actor, input MovementInput) (*models.StockMovement, error) {
	return s.apply(ctx, actor, input, enums.MovementTypeIn)
}

func (s *service) StockOut(ctx context.Context, actor Actor, input MovementInput) (*models.StockMovement, error) {
	return s.apply(ctx, actor, input, enums.MovementTypeOut)
}

func (s *service) apply(ctx context.Context, actor Actor, input MovementInput, movementType enums.MovementType) (*models.StockMovement, error) {
	// Reject before taking the lock: these failures have no side effects.
	if !actor.CanWrite {
		s.metrics.IncRejection("not_authorized")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "write access denied")
	}
	if actor.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting operator is required")
	}
	if input.PartCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part code is required")
	}
	if input.Qty <= 0 {
		s.metrics.IncRejection("invalid_quantity")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
			WithDetails(map[string]any{"quantity": input.Qty})
	}

	release, err := s.lock.Acquire(ctx, input.PartCode, s.lockWait)
	if err != nil {
		s.metrics.IncLockTimeout()
		return nil, err
	}
	defer release()

	var movement *models.StockMovement
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		// Re-read under the lock; caller-held balances are never trusted.
		part, err := s.parts.WithTx(tx).GetByCode(ctx, input.PartCode)
		if err != nil {
			return err
		}

		previous := part.Quantity
		balance := previous + input.Qty
		record := ledger.RecordMovementInput{
			RecordedAt:     time.Now().UTC(),
			PartCode:       input.PartCode,
			Type:           movementType,
			PreviousQty:    previous,
			InQty:          input.Qty,
			Balance:        balance,
			Applicant:      input.Applicant,
			HandoverPerson: input.HandoverPerson,
			Operator:       input.Operator,
			Floor:          input.Floor,
			DeliveryTAT:    input.DeliveryTAT,
			Remark:         input.Remark,
			EnteredBy:      actor.Name,
		}
		if movementType == enums.MovementTypeOut {
			if input.Qty > previous {
				s.metrics.IncRejection("insufficient_stock")
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("stock-out of %d exceeds available %d", input.Qty, previous)).
					WithDetails(map[string]any{
						"part_code": input.PartCode,
						"available": previous,
						"requested": input.Qty,
					})
			}
			balance = previous - input.Qty
			record.InQty = 0
			record.OutQty = input.Qty
			record.Balance = balance
		}

		// Ledger first: the append is immutable and self-describing, so a
		// crash between the two writes is repaired by reconciliation.
		txLedger, err := ledger.NewService(s.movements.WithTx(tx))
		if err != nil {
			return err
		}
		movement, err = txLedger.Record(ctx, record)
		if err != nil {
			return err
		}

		return s.parts.WithTx(tx).SetQuantityGuarded(ctx, input.PartCode, previous, balance)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMovement(string(movementType))
	if s.logg != nil {
		logCtx := s.logg.WithPartCode(ctx, movement.PartCode)
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"movement_type": string(movementType),
			"quantity":      input.Qty,
			"balance":       movement.Balance,
			"entered_by":    actor.Name,
		})
		s.logg.Info(logCtx, "stock.movement.recorded")
	}
	return movement, nil
}

// Reconcile recomputes a part's quantity from the ledger and repairs the
// stored value when they disagree. The ledger wins.
func (s *service) Reconcile(ctx context.Context, partCode string) (*ReconcileResult, error) {
	if partCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part code is required")
	}

	release, err := s.lock.Acquire(ctx, partCode, s.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	var result ReconcileResult
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		part, err := s.parts.WithTx(tx).GetByCode(ctx, partCode)
		if err != nil {
			return err
		}
		ledgerQty, err := s.movements.WithTx(tx).SumDeltas(ctx, partCode)
		if err != nil {
			return err
		}

		result = ReconcileResult{
			PartCode:  partCode,
			StoredQty: part.Quantity,
			LedgerQty: ledgerQty,
		}
		if part.Quantity == ledgerQty {
			return nil
		}

		result.Repaired = true
		return s.parts.WithTx(tx).SetQuantity(ctx, partCode, ledgerQty)
	})
	if err != nil {
		return nil, err
	}

	if result.Repaired {
		s.metrics.IncDriftRepair()
		if s.logg != nil {
			logCtx := s.logg.WithPartCode(ctx, partCode)
			logCtx = s.logg.WithFields(logCtx, map[string]any{
				"stored_qty": result.StoredQty,
				"ledger_qty": result.LedgerQty,
			})
			s.logg.Warn(logCtx, "stock.reconcile.drift_repaired")
		}
	}
	return &result, nil
}

// ReconcileAll reconciles every cataloged part, collecting per-part failures
// instead of stopping at the first one.
func (s *service) ReconcileAll(ctx context.Context) ([]ReconcileResult, error) {
	parts, err := s.parts.List(ctx)
	if err != nil {
		return nil, err
	}

	var results []ReconcileResult
	var errs error
	for _, part := range parts {
		result, err := s.Reconcile(ctx, part.PartCode)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconcile %s: %w", part.PartCode, err))
			continue
		}
		results = append(results, *result)
	}
	return results, errs
}
