package models

import (
	"context"
	"time"

	"bitbucket.org/gestionsur/gestion_backend/config"
	"bitbucket.org/gestionsur/gestion_backend/utils"
	"github.com/shopspring/decimal"
)

// Payment is a recorded collection event against an invoice. Rows are
// created only as a side effect of reconciling an invoice; the amount is
// always the invoice's full total.
type Payment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	Method      PaymentMethod   `gorm:"not null;type:enum('Transfer','Cash','Card','DirectDebit');default:'Transfer'" json:"method"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Payment) GetId() int {
	return p.ID
}

// GetInvoicePayments returns the collection history of one invoice,
// oldest first.
func GetInvoicePayments(ctx context.Context, invoiceId int) ([]*Payment, error) {
	if err := utils.ValidateResourceId[Invoice](ctx, invoiceId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var payments []*Payment
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceId).
		Order("payment_date, id").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
