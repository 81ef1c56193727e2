package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/gestionsur/gestion_backend/config"
	"bitbucket.org/gestionsur/gestion_backend/utils"
	"github.com/shopspring/decimal"
)

// Candidate search constants. The window is asymmetric on purpose:
// supplier invoices are typically issued well before the payment clears
// the bank, while customer payments land shortly after issuance.
const (
	suggestionLookBackDays  = 45
	suggestionLookAheadDays = 15

	// ScoreExact marks a candidate whose amount matches to the cent.
	ScoreExact = 100
	// ScoreTolerant marks a candidate within the rounding/fee tolerance.
	ScoreTolerant = 80
	// ScoreFallback marks the manual-pick invoices appended regardless
	// of amount and date.
	ScoreFallback = 10

	// fallbackInvoiceLimit caps the manual-pick list at the most recent
	// open invoices system-wide.
	fallbackInvoiceLimit = 10
)

var (
	// amountTolerance absorbs rounding noise and small bank fees.
	amountTolerance = decimal.NewFromFloat(0.05)
	// exactThreshold is the difference below which a match counts as exact.
	exactThreshold = decimal.NewFromFloat(0.01)
)

// Suggestion is a derived read model: one plausible counterpart for a
// pending movement. It is never persisted.
type Suggestion struct {
	SuggestionId    int               `json:"suggestion_id"`
	Type            MovementMatchType `json:"type"`
	Date            time.Time         `json:"date"`
	Amount          decimal.Decimal   `json:"amount"`
	EntityName      string            `json:"entity_name"`
	ReferenceNumber string            `json:"reference_number"`
	MatchScore      int               `json:"match_score"`
}

// Suggestion lists are best-effort fresh: they can go stale the moment a
// concurrent reconciliation consumes a candidate, so a short cache only
// widens a window that already exists. Reconciling a movement drops its
// cached list.
const suggestionCacheTTL = 30 * time.Second

func suggestionCacheKey(movementId int) string {
	return fmt.Sprintf("cache:suggestions:%d", movementId)
}

type suggestionCacheEntry struct {
	Movement    *BankMovement `json:"movement"`
	Suggestions []*Suggestion `json:"suggestions"`
}

// candidateRow is the projection shared by the expense and invoice
// candidate queries.
type candidateRow struct {
	ID              int
	Date            time.Time
	Amount          decimal.Decimal
	EntityName      string
	ReferenceNumber string
}

// suggestionWindow returns the inclusive date range searched around a
// movement date.
func suggestionWindow(movementDate time.Time) (from time.Time, to time.Time) {
	from = movementDate.AddDate(0, 0, -suggestionLookBackDays)
	to = movementDate.AddDate(0, 0, suggestionLookAheadDays)
	return from, to
}

// matchScore scores a candidate amount against the movement's absolute
// amount. The second return is false when the candidate falls outside
// the tolerance and must be discarded.
func matchScore(movementAmount decimal.Decimal, candidateAmount decimal.Decimal) (int, bool) {
	diff := candidateAmount.Sub(movementAmount.Abs()).Abs()
	if diff.GreaterThan(amountTolerance) {
		return 0, false
	}
	if diff.LessThan(exactThreshold) {
		return ScoreExact, true
	}
	return ScoreTolerant, true
}

// scoreCandidates turns window-filtered rows into scored suggestions,
// dropping rows outside the amount tolerance.
func scoreCandidates(movementAmount decimal.Decimal, matchType MovementMatchType, rows []candidateRow) []*Suggestion {
	var suggestions []*Suggestion
	for _, row := range rows {
		score, ok := matchScore(movementAmount, row.Amount)
		if !ok {
			continue
		}
		suggestions = append(suggestions, &Suggestion{
			SuggestionId:    row.ID,
			Type:            matchType,
			Date:            row.Date,
			Amount:          row.Amount,
			EntityName:      row.EntityName,
			ReferenceNumber: row.ReferenceNumber,
			MatchScore:      score,
		})
	}
	return suggestions
}

// appendFallback adds manual-pick invoice rows at ScoreFallback, skipping
// ids already suggested by the tolerant search.
func appendFallback(suggestions []*Suggestion, rows []candidateRow) []*Suggestion {
	seen := make(map[int]bool, len(suggestions))
	for _, s := range suggestions {
		seen[s.SuggestionId] = true
	}
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		suggestions = append(suggestions, &Suggestion{
			SuggestionId:    row.ID,
			Type:            MovementMatchTypeInvoice,
			Date:            row.Date,
			Amount:          row.Amount,
			EntityName:      row.EntityName,
			ReferenceNumber: row.ReferenceNumber,
			MatchScore:      ScoreFallback,
		})
	}
	return suggestions
}

// sortSuggestions orders deterministically: score descending, then date
// descending, then id ascending to break remaining ties.
func sortSuggestions(suggestions []*Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].MatchScore != suggestions[j].MatchScore {
			return suggestions[i].MatchScore > suggestions[j].MatchScore
		}
		if !suggestions[i].Date.Equal(suggestions[j].Date) {
			return suggestions[i].Date.After(suggestions[j].Date)
		}
		return suggestions[i].SuggestionId < suggestions[j].SuggestionId
	})
}

// GetReconciliationSuggestions proposes counterparts for one pending
// movement. Pure read: it is safe to call concurrently with anything,
// including reconciliations (the list is best-effort fresh and may go
// stale before the operator confirms).
func GetReconciliationSuggestions(ctx context.Context, movementId int) (*BankMovement, []*Suggestion, error) {
	var cached suggestionCacheEntry
	if found, err := config.GetRedisObject(suggestionCacheKey(movementId), &cached); err == nil && found {
		return cached.Movement, cached.Suggestions, nil
	}

	movement, err := utils.FetchModel[BankMovement](ctx, movementId)
	if err != nil {
		return nil, nil, err
	}

	from, to := suggestionWindow(movement.MovementDate)

	var suggestions []*Suggestion
	switch {
	case movement.IsOutgoing():
		rows, err := pendingExpenseCandidates(ctx, from, to)
		if err != nil {
			return nil, nil, err
		}
		suggestions = scoreCandidates(movement.Amount, MovementMatchTypeExpense, rows)

	case movement.IsIncoming():
		rows, err := openInvoiceCandidates(ctx, from, to)
		if err != nil {
			return nil, nil, err
		}
		suggestions = scoreCandidates(movement.Amount, MovementMatchTypeInvoice, rows)

		fallback, err := recentOpenInvoices(ctx, fallbackInvoiceLimit)
		if err != nil {
			return nil, nil, err
		}
		suggestions = appendFallback(suggestions, fallback)

	default:
		// zero amount: no population to search
	}

	sortSuggestions(suggestions)

	// Cache write is best-effort, same as everything else on Redis.
	_ = config.SetRedisObject(suggestionCacheKey(movementId), suggestionCacheEntry{
		Movement:    movement,
		Suggestions: suggestions,
	}, suggestionCacheTTL)

	return movement, suggestions, nil
}

func pendingExpenseCandidates(ctx context.Context, from time.Time, to time.Time) ([]candidateRow, error) {
	db := config.GetDB()
	var rows []candidateRow
	err := db.WithContext(ctx).
		Table("expenses").
		Joins("LEFT JOIN suppliers ON suppliers.id = expenses.supplier_id").
		Select("expenses.id, expenses.expense_date AS date, expenses.amount, suppliers.name AS entity_name, expenses.reference_number").
		Where("expenses.status = ?", ExpenseStatusPending).
		Where("expenses.expense_date BETWEEN ? AND ?", from, to).
		Order("expenses.expense_date DESC, expenses.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func openInvoiceCandidates(ctx context.Context, from time.Time, to time.Time) ([]candidateRow, error) {
	db := config.GetDB()
	var rows []candidateRow
	err := db.WithContext(ctx).
		Table("invoices").
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id").
		Select("invoices.id, invoices.invoice_date AS date, invoices.total AS amount, customers.name AS entity_name, invoices.invoice_number AS reference_number").
		Where("invoices.status NOT IN ?", []InvoiceStatus{InvoiceStatusCollected, InvoiceStatusVoid}).
		Where("invoices.invoice_date BETWEEN ? AND ?", from, to).
		Order("invoices.invoice_date DESC, invoices.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func recentOpenInvoices(ctx context.Context, limit int) ([]candidateRow, error) {
	db := config.GetDB()
	var rows []candidateRow
	err := db.WithContext(ctx).
		Table("invoices").
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id").
		Select("invoices.id, invoices.invoice_date AS date, invoices.total AS amount, customers.name AS entity_name, invoices.invoice_number AS reference_number").
		Where("invoices.status NOT IN ?", []InvoiceStatus{InvoiceStatusCollected, InvoiceStatusVoid}).
		Order("invoices.invoice_date DESC, invoices.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
