package service

import (
	"context"
	"testing"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/utils/apierror"
)

type fakeTransactions struct {
	rows []*entity.FinancialTransaction
	err  error
}

func (f *fakeTransactions) Create(_ context.Context, txn *entity.FinancialTransaction) error {
	if f.err != nil {
		return f.err
	}
	txn.ID = len(f.rows) + 1
	f.rows = append(f.rows, txn)
	return nil
}

func newTransactionFixture() (*DefaultTransactionService, *fakeTransactions, *inbox) {
	users := newFakeUsers(
		&entity.User{ID: ownerA, Role: "owner"},
		&entity.User{ID: 50, Role: "receptionist"},
	)
	txns := &fakeTransactions{}
	box := &inbox{}
	return NewTransactionService(txns, users, newNotifier(box), testValidate), txns, box
}

func validTransaction() *CreateTransactionRequest {
	return &CreateTransactionRequest{
		Type:            "income",
		Description:     "Scaling and polishing",
		Amount:          350000,
		PaymentMethod:   "transfer",
		TransactionDate: "2025-03-14",
	}
}

func TestTransactionService_ReceptionistEntryWaitsForOwner(t *testing.T) {
	svc, txns, box := newTransactionFixture()

	resp, apierr := svc.CreateTransaction(context.Background(), identity(50, auth.RoleReceptionist), validTransaction())
	expectOK(t, apierr)

	if resp.Status != entity.TransactionPending || resp.TransactionDate != "2025-03-14" {
		t.Fatalf("unexpected transaction %+v", resp)
	}
	if len(txns.rows) != 1 {
		t.Fatal("expected one stored transaction")
	}
	if got := box.recipients(); len(got) != 1 || got[0] != ownerA {
		t.Fatalf("expected the owner notified, got %v", got)
	}
}

func TestTransactionService_OwnerEntryIsApproved(t *testing.T) {
	svc, _, box := newTransactionFixture()

	resp, apierr := svc.CreateTransaction(context.Background(), identity(ownerA, auth.RoleOwner), validTransaction())
	expectOK(t, apierr)
	if resp.Status != entity.TransactionApproved {
		t.Fatalf("expected approved, got %s", resp.Status)
	}
	if len(box.recipients()) != 0 {
		t.Fatal("approved entries notify nobody")
	}
}

func TestTransactionService_Rules(t *testing.T) {
	svc, txns, _ := newTransactionFixture()

	_, apierr := svc.CreateTransaction(context.Background(), identity(30, auth.RoleAssistant), validTransaction())
	expectKind(t, apierr, apierror.KindUnauthorized)

	bad := validTransaction()
	bad.PaymentMethod = "crypto"
	_, apierr = svc.CreateTransaction(context.Background(), identity(50, auth.RoleReceptionist), bad)
	expectKind(t, apierr, apierror.KindInvalidArgument)

	bad = validTransaction()
	bad.Amount = -5
	_, apierr = svc.CreateTransaction(context.Background(), identity(50, auth.RoleReceptionist), bad)
	expectKind(t, apierr, apierror.KindInvalidArgument)

	if len(txns.rows) != 0 {
		t.Fatal("rejected requests must not be stored")
	}

	txns.err = errStorage
	_, apierr = svc.CreateTransaction(context.Background(), identity(50, auth.RoleReceptionist), validTransaction())
	expectKind(t, apierr, apierror.KindInternal)
}
