package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildledger/backend/models"
)

var (
	creator  = models.Actor{ID: "u-1", Name: "Kasim"}
	approver = models.Actor{ID: "u-2", Name: "Site Admin"}
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pendingExpense(amount string) models.Expense {
	e, _ := Create(CreateInput{
		ProjectID:     "p-1",
		Title:         "Cement bags",
		Amount:        dec(amount),
		Category:      "materials",
		PaymentStatus: models.PaymentStatusCredit,
		Creator:       creator,
	}, false, time.Now())
	return e
}

func TestCreate_CreditStartsUnpaid(t *testing.T) {
	now := time.Now()
	e, recompute := Create(CreateInput{
		ProjectID:     "p-1",
		Title:         "Cement bags",
		Amount:        dec("1000"),
		PaymentStatus: models.PaymentStatusCredit,
		Creator:       creator,
	}, false, now)

	assert.False(t, recompute)
	assert.Equal(t, models.StatusPending, e.Status)
	assert.True(t, e.PaidAmount.IsZero())
	assert.Nil(t, e.Processed)
}

func TestCreate_PaidCoversFullAmount(t *testing.T) {
	e, _ := Create(CreateInput{
		ProjectID:     "p-1",
		Title:         "Sand delivery",
		Amount:        dec("350.50"),
		PaymentStatus: models.PaymentStatusPaid,
		Creator:       creator,
	}, false, time.Now())

	assert.True(t, e.PaidAmount.Equal(dec("350.50")))
	assert.Equal(t, models.PaymentStatusPaid, e.PaymentStatus)
}

func TestCreate_ZeroAmountIsPaid(t *testing.T) {
	for _, status := range []string{
		models.PaymentStatusPaid,
		models.PaymentStatusPartial,
		models.PaymentStatusCredit,
	} {
		t.Run(status, func(t *testing.T) {
			e, _ := Create(CreateInput{
				ProjectID:     "p-1",
				Title:         "Comped delivery",
				Amount:        dec("0"),
				PaymentStatus: status,
				Creator:       creator,
			}, false, time.Now())

			assert.True(t, e.PaidAmount.IsZero())
			assert.Equal(t, models.PaymentStatusPaid, e.PaymentStatus,
				"nothing is owed on a zero-amount expense")
		})
	}
}

func TestCreate_PartialClampsPaidAmount(t *testing.T) {
	cases := []struct {
		name       string
		paid       string
		wantPaid   string
		wantStatus string
	}{
		{"within range", "400", "400", models.PaymentStatusPartial},
		{"negative clamped to zero", "-50", "0", models.PaymentStatusPartial},
		{"over amount clamped and marked paid", "1500", "1000", models.PaymentStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := Create(CreateInput{
				ProjectID:     "p-1",
				Title:         "Bricks",
				Amount:        dec("1000"),
				PaymentStatus: models.PaymentStatusPartial,
				PaidAmount:    dec(tc.paid),
				Creator:       creator,
			}, false, time.Now())
			assert.True(t, e.PaidAmount.Equal(dec(tc.wantPaid)), "paidAmount = %s", e.PaidAmount)
			assert.Equal(t, tc.wantStatus, e.PaymentStatus)
		})
	}
}

func TestCreate_PrivilegedAutoApproves(t *testing.T) {
	now := time.Now()
	e, recompute := Create(CreateInput{
		ProjectID:     "p-1",
		Title:         "Excavator rental",
		Amount:        dec("2000"),
		PaymentStatus: models.PaymentStatusCredit,
		Creator:       approver,
	}, true, now)

	assert.True(t, recompute, "auto-approved creation must trigger a recompute")
	assert.Equal(t, models.StatusApproved, e.Status)
	require.NotNil(t, e.Processed)
	assert.Equal(t, approver.ID, e.Processed.ActorID)
	assert.Equal(t, now, e.Processed.At)
}

func TestApprove_Pending(t *testing.T) {
	e := pendingExpense("1000")
	now := time.Now()

	approved, recompute, err := Approve(e, approver, now)
	require.NoError(t, err)
	assert.True(t, recompute)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.Processed)
	assert.Equal(t, approver.Name, approved.Processed.ActorName)

	total := RecomputeTotalSpent([]models.Expense{approved})
	assert.True(t, total.Equal(dec("1000")))
}

func TestApprove_SingleTransition(t *testing.T) {
	e := pendingExpense("100")
	approved, _, err := Approve(e, approver, time.Now())
	require.NoError(t, err)

	_, _, err = Approve(approved, approver, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	_, err = Reject(approved, approver, "duplicate", time.Now())
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestReject_RequiresReason(t *testing.T) {
	e := pendingExpense("100")

	_, err := Reject(e, approver, "  ", time.Now())
	assert.ErrorIs(t, err, ErrEmptyReason)

	rejected, err := Reject(e, approver, "no receipt attached", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "no receipt attached", rejected.RejectionReason)

	_, _, err = Approve(rejected, approver, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRecordPayment_PartialThenClamped(t *testing.T) {
	e := pendingExpense("1000")
	e, _, err := Approve(e, approver, time.Now())
	require.NoError(t, err)

	e = RecordPayment(e, dec("400"), time.Now())
	assert.True(t, e.PaidAmount.Equal(dec("400")))
	assert.Equal(t, models.PaymentStatusPartial, e.PaymentStatus)

	e = RecordPayment(e, dec("700"), time.Now())
	assert.True(t, e.PaidAmount.Equal(dec("1000")), "paidAmount clamped to amount")
	assert.Equal(t, models.PaymentStatusPaid, e.PaymentStatus)
}

func TestRecordPayment_Monotonic(t *testing.T) {
	e := pendingExpense("500")
	prev := e.PaidAmount
	for _, p := range []string{"100", "0", "250", "75", "9999"} {
		e = RecordPayment(e, dec(p), time.Now())
		assert.True(t, e.PaidAmount.GreaterThanOrEqual(prev), "paidAmount must be non-decreasing")
		assert.True(t, e.PaidAmount.LessThanOrEqual(e.Amount), "paidAmount must never exceed amount")
		prev = e.PaidAmount
	}
	assert.True(t, e.PaidAmount.Equal(e.Amount))
}

func TestSoftDelete_ApprovedTriggersRecompute(t *testing.T) {
	e := pendingExpense("1000")
	e, _, err := Approve(e, approver, time.Now())
	require.NoError(t, err)

	deleted, eff, err := SoftDelete(e, approver, false, time.Now())
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.True(t, eff.RecomputeTotal)
	assert.Nil(t, eff.Notice)
	assert.Equal(t, models.StatusApproved, deleted.Status, "soft delete never touches approval status")
}

func TestSoftDelete_PendingNeedsNoRecompute(t *testing.T) {
	e := pendingExpense("1000")
	_, eff, err := SoftDelete(e, creator, false, time.Now())
	require.NoError(t, err)
	assert.False(t, eff.RecomputeTotal)
}

func TestSoftDelete_DelegatedDeleterNotifiesAdmin(t *testing.T) {
	e := pendingExpense("1000")
	director := models.Actor{ID: "u-3", Name: "Director Jane"}

	_, eff, err := SoftDelete(e, director, true, time.Now())
	require.NoError(t, err)
	require.NotNil(t, eff.Notice)
	assert.Equal(t, "Director Jane", eff.Notice.DeleterName)
	assert.Equal(t, "Cement bags", eff.Notice.ExpenseTitle)
	assert.Equal(t, "p-1", eff.Notice.ProjectID)
}

func TestSoftDelete_Twice(t *testing.T) {
	e := pendingExpense("100")
	deleted, _, err := SoftDelete(e, creator, false, time.Now())
	require.NoError(t, err)

	_, _, err = SoftDelete(deleted, creator, false, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
}

func TestRestore_Symmetry(t *testing.T) {
	e := pendingExpense("1000")
	e, _, err := Approve(e, approver, time.Now())
	require.NoError(t, err)

	deleted, _, err := SoftDelete(e, approver, false, time.Now())
	require.NoError(t, err)

	restored, recompute, err := Restore(deleted, time.Now())
	require.NoError(t, err)
	assert.True(t, recompute, "restoring an approved expense re-enters the aggregate")
	assert.False(t, restored.IsDeleted)
	assert.Empty(t, restored.DeletedBy)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, e.Status, restored.Status)
	assert.True(t, e.Amount.Equal(restored.Amount))
	assert.Equal(t, e.Processed, restored.Processed)
}

func TestRestore_NotDeleted(t *testing.T) {
	e := pendingExpense("100")
	_, _, err := Restore(e, time.Now())
	assert.ErrorIs(t, err, ErrNotDeleted)
}
