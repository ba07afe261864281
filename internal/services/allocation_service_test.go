package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

type fakeLeaseReader struct {
	leases map[int]*models.Lease
}

func (f *fakeLeaseReader) Get(_ context.Context, id int) (*models.Lease, error) {
	l, ok := f.leases[id]
	if !ok {
		return nil, fmt.Errorf("%w: lease %d", ledger.ErrNotFound, id)
	}
	return l, nil
}

type fakeAllocationStore struct {
	lastPayment *models.Payment
	lastManual  []models.ManualMatch
	lastNow     time.Time
	result      *models.AllocationResult
}

func (f *fakeAllocationStore) Allocate(_ context.Context, payment *models.Payment, manual []models.ManualMatch, now time.Time) (*models.AllocationResult, error) {
	payment.ID = 1
	f.lastPayment = payment
	f.lastManual = manual
	f.lastNow = now
	if f.result == nil {
		f.result = &models.AllocationResult{Payment: payment, Unallocated: decimal.Zero}
	}
	return f.result, nil
}

func (f *fakeAllocationStore) Get(_ context.Context, id int) (*models.Payment, error) {
	return f.lastPayment, nil
}

func (f *fakeAllocationStore) ListByLease(_ context.Context, leaseID int) ([]*models.Payment, error) {
	if f.lastPayment == nil {
		return nil, nil
	}
	return []*models.Payment{f.lastPayment}, nil
}

func (f *fakeAllocationStore) MatchesForPayment(_ context.Context, paymentID int) ([]*models.PaymentScheduleMatch, error) {
	return nil, nil
}

func testLease() *models.Lease {
	return &models.Lease{ID: 7, PropertyID: 3, TenantID: 5, OwnerID: 2}
}

func TestRecordPayment_FillsPaymentFromLease(t *testing.T) {
	store := &fakeAllocationStore{}
	svc := NewAllocationService(
		&fakeLeaseReader{leases: map[int]*models.Lease{7: testLease()}},
		store,
		timeutil.Fixed(time.Date(2026, time.March, 10, 14, 0, 0, 0, timeutil.GST)),
	)

	result, err := svc.RecordPayment(context.Background(), &models.CreatePaymentRequest{
		LeaseID:   7,
		Amount:    decimal.RequireFromString("1200"),
		Method:    models.MethodBankTransfer,
		Reference: "TRN-881",
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, result.Payment)

	p := store.lastPayment
	assert.Equal(t, 7, p.LeaseID)
	assert.Equal(t, 5, p.TenantID)
	assert.Equal(t, 3, p.PropertyID)
	assert.Equal(t, "TRN-881", p.Reference)
	require.NotNil(t, p.RecordedByUserID)
	assert.Equal(t, 42, *p.RecordedByUserID)
	// PaidOn defaults to the clock's date at midnight
	assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, timeutil.GST), p.PaidOn)
}

func TestRecordPayment_ExplicitPaidOn(t *testing.T) {
	store := &fakeAllocationStore{}
	svc := NewAllocationService(
		&fakeLeaseReader{leases: map[int]*models.Lease{7: testLease()}},
		store,
		timeutil.Fixed(time.Date(2026, time.March, 10, 0, 0, 0, 0, timeutil.GST)),
	)

	_, err := svc.RecordPayment(context.Background(), &models.CreatePaymentRequest{
		LeaseID: 7,
		Amount:  decimal.RequireFromString("500"),
		Method:  models.MethodCash,
		PaidOn:  "2026-02-28",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, timeutil.GST), store.lastPayment.PaidOn)
	assert.Nil(t, store.lastPayment.RecordedByUserID)
}

func TestRecordPayment_Rejections(t *testing.T) {
	svc := NewAllocationService(
		&fakeLeaseReader{leases: map[int]*models.Lease{7: testLease()}},
		&fakeAllocationStore{},
		timeutil.Fixed(time.Date(2026, time.March, 10, 0, 0, 0, 0, timeutil.GST)),
	)

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.RecordPayment(context.Background(), &models.CreatePaymentRequest{
			LeaseID: 7, Amount: decimal.Zero, Method: models.MethodCash,
		}, 0)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := svc.RecordPayment(context.Background(), &models.CreatePaymentRequest{
			LeaseID: 7, Amount: decimal.RequireFromString("100"), Method: models.PaymentMethod("crypto"),
		}, 0)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("cheque method goes through the lifecycle", func(t *testing.T) {
		_, err := svc.RecordPayment(context.Background(), &models.CreatePaymentRequest{
			LeaseID: 7, Amount: decimal.RequireFromString("100"), Method: models.MethodCheque,
		}, 0)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("bad paid_on", func(t *testing.T) {
		_, err := svc.RecordPayment(context.Background(), &models.CreatePaymentRequest{
			LeaseID: 7, Amount: decimal.RequireFromString("100"), Method: models.MethodCash, PaidOn: "28/02/2026",
		}, 0)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("missing lease", func(t *testing.T) {
		_, err := svc.RecordPayment(context.Background(), &models.CreatePaymentRequest{
			LeaseID: 99, Amount: decimal.RequireFromString("100"), Method: models.MethodCash,
		}, 0)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestRecordChequeProceeds(t *testing.T) {
	store := &fakeAllocationStore{}
	svc := NewAllocationService(
		&fakeLeaseReader{leases: map[int]*models.Lease{7: testLease()}},
		store,
		timeutil.Fixed(time.Date(2026, time.April, 1, 0, 0, 0, 0, timeutil.GST)),
	)

	cleared := time.Date(2026, time.March, 20, 0, 0, 0, 0, timeutil.GST)
	cheque := &models.Cheque{
		ID:           11,
		LeaseID:      7,
		TenantID:     5,
		PropertyID:   3,
		ChequeNumber: "000451",
		BankName:     "ENBD",
		ChequeDate:   time.Date(2026, time.March, 15, 0, 0, 0, 0, timeutil.GST),
		Amount:       decimal.RequireFromString("9000"),
		ResolvedOn:   &cleared,
	}

	_, err := svc.RecordChequeProceeds(context.Background(), cheque)
	require.NoError(t, err)

	p := store.lastPayment
	require.NotNil(t, p.ChequeID)
	assert.Equal(t, 11, *p.ChequeID)
	assert.Equal(t, models.MethodCheque, p.Method)
	assert.Equal(t, "cheque 000451 (ENBD)", p.Reference)
	// PaidOn is the clearing date, not the face date
	assert.Equal(t, cleared, p.PaidOn)
}
