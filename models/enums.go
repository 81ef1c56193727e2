package models

type MovementStatus string

const (
	MovementStatusPending    MovementStatus = "Pending"
	MovementStatusReconciled MovementStatus = "Reconciled"
)

// MovementMatchType tags which counterpart population a movement settles.
// The sign of the movement amount decides it: negative settles expenses,
// positive settles invoices.
type MovementMatchType string

const (
	MovementMatchTypeNone    MovementMatchType = "None"
	MovementMatchTypeExpense MovementMatchType = "Expense"
	MovementMatchTypeInvoice MovementMatchType = "Invoice"
)

type ExpenseStatus string

const (
	ExpenseStatusPending ExpenseStatus = "Pending"
	ExpenseStatusPaid    ExpenseStatus = "Paid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusIssued    InvoiceStatus = "Issued"
	InvoiceStatusCollected InvoiceStatus = "Collected"
	InvoiceStatusVoid      InvoiceStatus = "Void"
)

type PaymentMethod string

const (
	PaymentMethodTransfer    PaymentMethod = "Transfer"
	PaymentMethodCash        PaymentMethod = "Cash"
	PaymentMethodCard        PaymentMethod = "Card"
	PaymentMethodDirectDebit PaymentMethod = "DirectDebit"
)
