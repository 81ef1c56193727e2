package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/gestionsur/gestion_backend/config"
	"bitbucket.org/gestionsur/gestion_backend/utils"
	"github.com/shopspring/decimal"
)

// BankMovement is one line item from an imported bank statement.
// Amount is signed: negative = outgoing (expense side), positive =
// incoming (revenue side). Rows are created by statement ingestion,
// mutated only by ReconcileBankMovement, and never deleted.
type BankMovement struct {
	ID              int               `gorm:"primary_key" json:"id"`
	MovementDate    time.Time         `gorm:"index;not null" json:"movement_date" binding:"required"`
	Amount          decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Description     string            `gorm:"type:text" json:"description"`
	ReferenceNumber string            `gorm:"size:255;default:null" json:"reference_number"`
	Status          MovementStatus    `gorm:"not null;type:enum('Pending','Reconciled');default:'Pending'" json:"status"`
	MatchType       MovementMatchType `gorm:"not null;type:enum('None','Expense','Invoice');default:'None'" json:"match_type"`
	// MatchId keeps the first selected counterpart for compatibility with
	// the old single-id column; the full selection lives in Matches.
	MatchId   int             `gorm:"default:0" json:"match_id"`
	Matches   []MovementMatch `gorm:"foreignKey:BankMovementId" json:"matches"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m BankMovement) GetId() int {
	return m.ID
}

type NewBankMovement struct {
	MovementDate    time.Time       `json:"movement_date" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"reference_number"`
}

func (input *NewBankMovement) validate() error {
	if input.Amount.IsZero() {
		return fmt.Errorf("%w: movement amount cannot be zero", utils.ErrorValidation)
	}
	return nil
}

// CreateBankMovement records one statement line. Ingestion is the only
// producer of movements; reconciliation never creates them.
func CreateBankMovement(ctx context.Context, input *NewBankMovement) (*BankMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	movement := BankMovement{
		MovementDate:    input.MovementDate,
		Amount:          input.Amount,
		Description:     input.Description,
		ReferenceNumber: input.ReferenceNumber,
		Status:          MovementStatusPending,
		MatchType:       MovementMatchTypeNone,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func GetBankMovement(ctx context.Context, id int) (*BankMovement, error) {
	return utils.FetchModel[BankMovement](ctx, id)
}

// ListPendingBankMovements returns every movement still awaiting
// reconciliation, newest first.
func ListPendingBankMovements(ctx context.Context) ([]*BankMovement, error) {
	db := config.GetDB()
	var movements []*BankMovement
	err := db.WithContext(ctx).
		Where("status = ?", MovementStatusPending).
		Order("movement_date DESC, id DESC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// GetBankMovementMatches returns the full counterpart selection recorded
// for a reconciled movement.
func GetBankMovementMatches(ctx context.Context, movementId int) ([]*MovementMatch, error) {
	if err := utils.ValidateResourceId[BankMovement](ctx, movementId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var matches []*MovementMatch
	err := db.WithContext(ctx).
		Where("bank_movement_id = ?", movementId).
		Order("id").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// IsOutgoing reports whether the movement sits on the expense side.
func (m BankMovement) IsOutgoing() bool {
	return m.Amount.IsNegative()
}

// IsIncoming reports whether the movement sits on the revenue side.
func (m BankMovement) IsIncoming() bool {
	return m.Amount.IsPositive()
}

var errMovementDirectionless = errors.New("movement amount has no direction")

// counterpartTypeForAmount derives the only population a movement may
// ever settle against from its sign.
func counterpartTypeForAmount(amount decimal.Decimal) (MovementMatchType, error) {
	switch {
	case amount.IsNegative():
		return MovementMatchTypeExpense, nil
	case amount.IsPositive():
		return MovementMatchTypeInvoice, nil
	default:
		return MovementMatchTypeNone, errMovementDirectionless
	}
}
