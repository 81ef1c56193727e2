package models

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/gestionsur/gestion_backend/utils"
	"github.com/shopspring/decimal"
)

func TestCounterpartTypeForAmount(t *testing.T) {
	cases := []struct {
		amount  string
		want    MovementMatchType
		wantErr bool
	}{
		{"-100.00", MovementMatchTypeExpense, false},
		{"-0.01", MovementMatchTypeExpense, false},
		{"250.00", MovementMatchTypeInvoice, false},
		{"0.01", MovementMatchTypeInvoice, false},
		{"0", MovementMatchTypeNone, true},
	}

	for _, tc := range cases {
		got, err := counterpartTypeForAmount(decimal.RequireFromString(tc.amount))
		if tc.wantErr {
			if err == nil {
				t.Errorf("counterpartTypeForAmount(%s): expected error", tc.amount)
			}
			continue
		}
		if err != nil {
			t.Errorf("counterpartTypeForAmount(%s): %v", tc.amount, err)
			continue
		}
		if got != tc.want {
			t.Errorf("counterpartTypeForAmount(%s) = %s, want %s", tc.amount, got, tc.want)
		}
	}
}

func TestReconcileInputValidate(t *testing.T) {
	outgoing := &BankMovement{
		ID:           1,
		MovementDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("-100.00"),
		Status:       MovementStatusPending,
	}
	incoming := &BankMovement{
		ID:           2,
		MovementDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("250.00"),
		Status:       MovementStatusPending,
	}

	cases := []struct {
		name     string
		movement *BankMovement
		input    ReconcileBankMovementInput
		wantErr  bool
	}{
		{"expense match for outgoing", outgoing, ReconcileBankMovementInput{MatchType: MovementMatchTypeExpense, MatchIds: []int{5}}, false},
		{"invoice match for incoming", incoming, ReconcileBankMovementInput{MatchType: MovementMatchTypeInvoice, MatchIds: []int{5, 6}}, false},
		{"empty id list", outgoing, ReconcileBankMovementInput{MatchType: MovementMatchTypeExpense, MatchIds: nil}, true},
		{"unknown match type", outgoing, ReconcileBankMovementInput{MatchType: "Journal", MatchIds: []int{5}}, true},
		{"none match type", outgoing, ReconcileBankMovementInput{MatchType: MovementMatchTypeNone, MatchIds: []int{5}}, true},
		{"invoice match against outgoing", outgoing, ReconcileBankMovementInput{MatchType: MovementMatchTypeInvoice, MatchIds: []int{5}}, true},
		{"expense match against incoming", incoming, ReconcileBankMovementInput{MatchType: MovementMatchTypeExpense, MatchIds: []int{5}}, true},
	}

	for _, tc := range cases {
		err := tc.input.validate(tc.movement)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected validation error", tc.name)
			} else if !errors.Is(err, utils.ErrorValidation) {
				t.Errorf("%s: error %v is not a validation error", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestZeroAmountMovementValidation(t *testing.T) {
	input := NewBankMovement{
		MovementDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.Zero,
	}
	if err := input.validate(); !errors.Is(err, utils.ErrorValidation) {
		t.Fatalf("zero-amount movement: got %v, want validation error", err)
	}
}
