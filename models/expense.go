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

// Expense is an outgoing obligation owed to a supplier. It is created by
// the expense module and flipped Pending -> Paid by reconciliation of a
// negative bank movement. Partial payments are tracked elsewhere; this
// path settles an expense in full or not at all.
type Expense struct {
	ID              int             `gorm:"primary_key" json:"id"`
	SupplierId      int             `gorm:"index" json:"supplier_id"`
	ExpenseDate     time.Time       `gorm:"index;not null" json:"expense_date" binding:"required"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	ReferenceNumber string          `gorm:"size:255" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Status          ExpenseStatus   `gorm:"not null;type:enum('Pending','Paid');default:'Pending'" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e Expense) GetId() int {
	return e.ID
}

type NewExpense struct {
	SupplierId      int             `json:"supplier_id"`
	ExpenseDate     time.Time       `json:"expense_date" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

func (input *NewExpense) validate(ctx context.Context) error {
	if !input.Amount.IsPositive() {
		return fmt.Errorf("%w: expense amount must be positive", utils.ErrorValidation)
	}
	if input.SupplierId > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return fmt.Errorf("%w: supplier not found", utils.ErrorValidation)
			}
			return err
		}
	}
	return nil
}

func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	expense := Expense{
		SupplierId:      input.SupplierId,
		ExpenseDate:     input.ExpenseDate,
		Amount:          input.Amount,
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
		Status:          ExpenseStatusPending,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func GetExpense(ctx context.Context, id int) (*Expense, error) {
	return utils.FetchModel[Expense](ctx, id)
}
