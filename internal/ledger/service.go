package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service records and reads immutable movement records.
type Service interface {
	Record(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error)
	Query(ctx context.Context, filter Filter) ([]models.StockMovement, error)
	NetQuantity(ctx context.Context, partCode string) (int, error)
}

type service struct {
	repo Repository
}

// RecordMovementInput captures the immutable data a movement record requires.
type RecordMovementInput struct {
	RecordedAt     time.Time
	PartCode       string
	Type           enums.MovementType
	PreviousQty    int
	InQty          int
	OutQty         int
	Balance        int
	Applicant      string
	HandoverPerson string
	Operator       string
	Floor          string
	DeliveryTAT    string
	Remark         string
	EnteredBy      string
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error) {
	if input.PartCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part code is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement type %q", input.Type))
	}
	if input.InQty < 0 || input.OutQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement quantities must be non-negative")
	}
	if (input.InQty > 0) == (input.OutQty > 0) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of in_qty and out_qty must be positive")
	}
	if input.Balance != input.PreviousQty+input.InQty-input.OutQty {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "balance does not match previous quantity plus delta")
	}
	if input.Balance < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "balance must be non-negative")
	}

	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	movement := &models.StockMovement{
		ID:             uuid.New(),
		RecordedAt:     recordedAt,
		PartCode:       input.PartCode,
		Type:           input.Type,
		PreviousQty:    input.PreviousQty,
		InQty:          input.InQty,
		OutQty:         input.OutQty,
		Balance:        input.Balance,
		Applicant:      input.Applicant,
		HandoverPerson: input.HandoverPerson,
		Operator:       input.Operator,
		Floor:          input.Floor,
		DeliveryTAT:    input.DeliveryTAT,
		Remark:         input.Remark,
		EnteredBy:      input.EnteredBy,
	}

	if err := s.repo.Append(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *service) Query(ctx context.Context, filter Filter) ([]models.StockMovement, error) {
	return s.repo.Query(ctx, filter)
}

// NetQuantity reconstructs a part's quantity by replaying the full ledger.
func (s *service) NetQuantity(ctx context.Context, partCode string) (int, error) {
	if partCode == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "part code is required")
	}
	return s.repo.SumDeltas(ctx, partCode)
}
