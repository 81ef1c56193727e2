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

// Invoice is an incoming receivable owed by a customer. It is eligible as
// a reconciliation counterpart whenever its status is neither Collected
// nor Void, and is flipped to Collected by reconciliation of a positive
// bank movement. Void is absorbing and never entered here.
type Invoice struct {
	ID            int             `gorm:"primary_key" json:"id"`
	CustomerId    int             `gorm:"index" json:"customer_id"`
	InvoiceDate   time.Time       `gorm:"index;not null" json:"invoice_date" binding:"required"`
	InvoiceNumber string          `gorm:"size:255" json:"invoice_number"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Status        InvoiceStatus   `gorm:"not null;type:enum('Draft','Issued','Collected','Void');default:'Draft'" json:"status"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i Invoice) GetId() int {
	return i.ID
}

// IsOpen reports whether the invoice may still be settled.
func (i Invoice) IsOpen() bool {
	return i.Status != InvoiceStatusCollected && i.Status != InvoiceStatusVoid
}

type NewInvoice struct {
	CustomerId    int             `json:"customer_id"`
	InvoiceDate   time.Time       `json:"invoice_date" binding:"required"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus   `json:"status"`
}

func (input *NewInvoice) validate(ctx context.Context) error {
	if !input.Total.IsPositive() {
		return fmt.Errorf("%w: invoice total must be positive", utils.ErrorValidation)
	}
	switch input.Status {
	case "", InvoiceStatusDraft, InvoiceStatusIssued:
		// reconciliation may later flip these to Collected
	default:
		return fmt.Errorf("%w: new invoice status must be Draft or Issued", utils.ErrorValidation)
	}
	if input.CustomerId > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return fmt.Errorf("%w: customer not found", utils.ErrorValidation)
			}
			return err
		}
	}
	return nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = InvoiceStatusDraft
	}

	invoice := Invoice{
		CustomerId:    input.CustomerId,
		InvoiceDate:   input.InvoiceDate,
		InvoiceNumber: input.InvoiceNumber,
		Total:         input.Total,
		Status:        status,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	return utils.FetchModel[Invoice](ctx, id)
}
