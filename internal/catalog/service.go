package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/bufferstock-backend/internal/inventory"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/pkg/db"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
)

// initialStockRemark marks the ledger record that establishes a part's
// opening balance.
const initialStockRemark = "initial stock"

// PartInput seeds or creates a catalog entry. EnteredBy identifies the
// operator creating the part and is never read from request bodies.
type PartInput struct {
	PartCode    string `json:"part_code" validate:"required"`
	Description string `json:"description" validate:"required"`
	Base        string `json:"base"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	EnteredBy   string `json:"-"`
}

// DemoParts is the starter catalog loaded behind the seed feature flag.
var DemoParts = []PartInput{
	{PartCode: "P1001", Description: "RAM 8GB", Base: "HQ", Type: "memory", Quantity: 50},
	{PartCode: "P1002", Description: "SSD 512GB", Base: "HQ", Type: "storage", Quantity: 30},
	{PartCode: "P1003", Description: "Keyboard", Base: "HQ", Type: "peripheral", Quantity: 100},
}

// Service manages the parts catalog outside of quantity mutation. Creating a
// part with an opening quantity still goes through the ledger: the part row
// and its initial movement commit in one transaction, so replaying the ledger
// from zero always reproduces the stored quantity.
type Service interface {
	CreatePart(ctx context.Context, input PartInput) (*models.Part, error)
	GetPart(ctx context.Context, partCode string) (*models.Part, error)
	ListParts(ctx context.Context) ([]models.Part, error)
	Seed(ctx context.Context, parts []PartInput) (int, error)
}

type service struct {
	client    *db.Client
	parts     inventory.Repository
	movements ledger.Repository
	logg      *logger.Logger
}

// NewService wires a catalog service with the provided repositories.
func NewService(client *db.Client, parts inventory.Repository, movements ledger.Repository, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if parts == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if movements == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{client: client, parts: parts, movements: movements, logg: logg}, nil
}

func (s *service) CreatePart(ctx context.Context, input PartInput) (*models.Part, error) {
	code := strings.TrimSpace(input.PartCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part code is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity must be non-negative")
	}

	enteredBy := strings.TrimSpace(input.EnteredBy)
	if enteredBy == "" {
		enteredBy = "system"
	}

	part := &models.Part{
		PartCode:    code,
		Description: strings.TrimSpace(input.Description),
		Base:        strings.TrimSpace(input.Base),
		Type:        strings.TrimSpace(input.Type),
		Quantity:    input.Quantity,
	}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.parts.WithTx(tx).Create(ctx, part); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "part code already exists").
					WithDetails(map[string]any{"part_code": code})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create part")
		}
		if part.Quantity == 0 {
			return nil
		}

		// An opening balance enters through the ledger like any other
		// receipt, so reconciliation never mistakes it for drift.
		txLedger, err := ledger.NewService(s.movements.WithTx(tx))
		if err != nil {
			return err
		}
		_, err = txLedger.Record(ctx, ledger.RecordMovementInput{
			RecordedAt:  time.Now().UTC(),
			PartCode:    code,
			Type:        enums.MovementTypeIn,
			PreviousQty: 0,
			InQty:       part.Quantity,
			Balance:     part.Quantity,
			Remark:      initialStockRemark,
			EnteredBy:   enteredBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

func (s *service) GetPart(ctx context.Context, partCode string) (*models.Part, error) {
	if partCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part code is required")
	}
	return s.parts.GetByCode(ctx, partCode)
}

func (s *service) ListParts(ctx context.Context) ([]models.Part, error) {
	return s.parts.List(ctx)
}

// Seed inserts any missing parts, skipping codes that already exist so reruns
// are harmless.
func (s *service) Seed(ctx context.Context, inputs []PartInput) (int, error) {
	created := 0
	for _, input := range inputs {
		_, err := s.CreatePart(ctx, input)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				continue
			}
			return created, err
		}
		created++
	}

	if s.logg != nil && created > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{"created": created})
		s.logg.Info(logCtx, "catalog.seeded")
	}
	return created, nil
}
