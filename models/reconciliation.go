package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/gestionsur/gestion_backend/config"
	"bitbucket.org/gestionsur/gestion_backend/utils"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MovementMatch records one counterpart settled by a movement. The old
// design kept a single match_id column on the movement and silently lost
// the rest of a multi-id selection; these rows make the full selection
// recoverable. Written only inside the reconciliation transaction.
type MovementMatch struct {
	ID              int               `gorm:"primary_key" json:"id"`
	BankMovementId  int               `gorm:"index;not null" json:"bank_movement_id"`
	CounterpartType MovementMatchType `gorm:"not null;type:enum('Expense','Invoice')" json:"counterpart_type"`
	CounterpartId   int               `gorm:"index;not null" json:"counterpart_id"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (m MovementMatch) GetId() int {
	return m.ID
}

type ReconcileBankMovementInput struct {
	MatchType MovementMatchType `json:"match_type" binding:"required"`
	MatchIds  []int             `json:"match_ids" binding:"required,min=1,dive,gt=0"`
}

func (input *ReconcileBankMovementInput) validate(movement *BankMovement) error {
	if len(input.MatchIds) == 0 {
		return fmt.Errorf("%w: at least one counterpart id is required", utils.ErrorValidation)
	}
	if input.MatchType != MovementMatchTypeExpense && input.MatchType != MovementMatchTypeInvoice {
		return fmt.Errorf("%w: unknown match type %q", utils.ErrorValidation, input.MatchType)
	}

	expectedType, err := counterpartTypeForAmount(movement.Amount)
	if err != nil {
		return fmt.Errorf("%w: %s", utils.ErrorValidation, err.Error())
	}
	if input.MatchType != expectedType {
		return fmt.Errorf("%w: movement %d can only settle %s counterparts",
			utils.ErrorValidation, movement.ID, expectedType)
	}
	return nil
}

// ReconcileBankMovement applies a human-confirmed match: flips the
// movement to Reconciled, settles every selected counterpart and, for
// invoices, appends one full-amount Payment each. Everything runs in a
// single transaction; any failure leaves the store untouched.
//
// The movement flip is a conditional UPDATE keyed on the Pending status,
// so concurrent requests for the same movement (two operators, a retry
// after a timeout) can never both commit: the loser sees zero affected
// rows and fails with ErrorAlreadyReconciled.
func ReconcileBankMovement(ctx context.Context, movementId int, input *ReconcileBankMovementInput) (*BankMovement, error) {
	logger := config.GetLogger()

	// Best-effort redis lock to keep concurrent operators from doing the
	// work twice. Correctness never depends on Redis: the conditional
	// UPDATE below is the real guard.
	if redisLock := config.GetRedisLock(); redisLock != nil {
		lock, err := redisLock.Obtain(ctx, fmt.Sprintf("lock:bank-movement:%d", movementId), 30*time.Second, nil)
		if err == redislock.ErrNotObtained {
			logger.WithFields(logrus.Fields{
				"funcName":    "ReconcileBankMovement",
				"movement_id": movementId,
			}).Warn("could not obtain redis lock; proceeding without redis lock")
		} else if err != nil {
			logger.WithFields(logrus.Fields{
				"funcName":    "ReconcileBankMovement",
				"movement_id": movementId,
			}).Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
		} else {
			defer func() {
				if releaseErr := lock.Release(ctx); releaseErr != nil && releaseErr != redislock.ErrLockNotHeld {
					logger.WithFields(logrus.Fields{
						"funcName":    "ReconcileBankMovement",
						"movement_id": movementId,
					}).Warn("failed to release redis lock: " + releaseErr.Error())
				}
			}()
		}
	}

	movement, err := utils.FetchModel[BankMovement](ctx, movementId)
	if err != nil {
		return nil, err
	}
	if movement.Status != MovementStatusPending {
		return nil, utils.ErrorAlreadyReconciled
	}
	if err := input.validate(movement); err != nil {
		return nil, err
	}

	matchIds := utils.UniqueSlice(input.MatchIds)

	db := config.GetDB()
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Conditional flip: at most one reconciliation ever commits per movement.
	res := tx.WithContext(ctx).Model(&BankMovement{}).
		Where("id = ? AND status = ?", movementId, MovementStatusPending).
		Updates(map[string]interface{}{
			"status":     MovementStatusReconciled,
			"match_type": input.MatchType,
			"match_id":   matchIds[0],
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrorAlreadyReconciled
	}

	for _, counterpartId := range matchIds {
		switch input.MatchType {
		case MovementMatchTypeExpense:
			if err := settleExpense(ctx, tx, movement, counterpartId); err != nil {
				tx.Rollback()
				return nil, err
			}
		case MovementMatchTypeInvoice:
			if err := collectInvoice(ctx, tx, movement, counterpartId); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		match := MovementMatch{
			BankMovementId:  movementId,
			CounterpartType: input.MatchType,
			CounterpartId:   counterpartId,
		}
		if err := tx.WithContext(ctx).Create(&match).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// The cached suggestion list for this movement is now meaningless.
	_ = config.RemoveRedisKey(suggestionCacheKey(movementId))

	movement.Status = MovementStatusReconciled
	movement.MatchType = input.MatchType
	movement.MatchId = matchIds[0]
	return movement, nil
}

// settleExpense flips one selected expense Pending -> Paid inside the
// reconciliation transaction.
func settleExpense(ctx context.Context, tx *gorm.DB, movement *BankMovement, expenseId int) error {
	var expense Expense
	if err := tx.WithContext(ctx).First(&expense, expenseId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("expense %d: %w", expenseId, utils.ErrorRecordNotFound)
		}
		return err
	}
	if expense.Status != ExpenseStatusPending {
		return fmt.Errorf("%w: expense %d is not pending", utils.ErrorValidation, expenseId)
	}

	// Conditional for the same reason as the movement flip: a concurrent
	// reconciliation may have consumed this candidate since the operator
	// loaded the suggestion list.
	res := tx.WithContext(ctx).Model(&Expense{}).
		Where("id = ? AND status = ?", expenseId, ExpenseStatusPending).
		Update("status", ExpenseStatusPaid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: expense %d is not pending", utils.ErrorValidation, expenseId)
	}
	return nil
}

// collectInvoice appends one Payment for the invoice's full total, then
// flips the invoice to Collected, inside the reconciliation transaction.
// The payment amount is deliberately the invoice total and NOT a share of
// the movement amount: invoices are only ever matched in full here.
func collectInvoice(ctx context.Context, tx *gorm.DB, movement *BankMovement, invoiceId int) error {
	var invoice Invoice
	if err := tx.WithContext(ctx).First(&invoice, invoiceId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invoice %d: %w", invoiceId, utils.ErrorRecordNotFound)
		}
		return err
	}
	if !invoice.IsOpen() {
		return fmt.Errorf("%w: invoice %d is not open", utils.ErrorValidation, invoiceId)
	}

	payment := Payment{
		InvoiceId:   invoiceId,
		Amount:      invoice.Total,
		PaymentDate: movement.MovementDate,
		Method:      PaymentMethodTransfer,
		Notes:       fmt.Sprintf("Reconciled against bank movement #%d", movement.ID),
	}
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		return err
	}

	res := tx.WithContext(ctx).Model(&Invoice{}).
		Where("id = ? AND status NOT IN ?", invoiceId, []InvoiceStatus{InvoiceStatusCollected, InvoiceStatusVoid}).
		Update("status", InvoiceStatusCollected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: invoice %d is not open", utils.ErrorValidation, invoiceId)
	}
	return nil
}
