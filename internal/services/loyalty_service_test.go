package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoyaltyFixture(t *testing.T, balance int) (LoyaltyService, *memUserRepo, *memRewardRepo, uint) {
	t.Helper()
	users := newMemUserRepo()
	user := &models.User{Name: "Asha", Email: "asha@example.com", RewardPoints: balance, IsActive: true}
	require.NoError(t, users.Create(user))

	rewards := newMemRewardRepo(users)
	return NewLoyaltyService(rewards, users), users, rewards, user.ID
}

func TestCredit(t *testing.T) {
	svc, users, _, userID := newLoyaltyFixture(t, 0)

	txn, err := svc.Credit(userID, 50, "order reward", nil)
	require.NoError(t, err)
	assert.Equal(t, string(models.RewardEarned), txn.Type)
	assert.Equal(t, 50, txn.Points)
	assert.Equal(t, 50, txn.BalanceAfter)

	user, err := users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 50, user.RewardPoints)
}

func TestCredit_NonPositivePoints(t *testing.T) {
	svc, _, _, userID := newLoyaltyFixture(t, 0)

	_, err := svc.Credit(userID, 0, "bad", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Credit(userID, -10, "bad", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCredit_UnknownUser(t *testing.T) {
	svc, _, _, _ := newLoyaltyFixture(t, 0)

	_, err := svc.Credit(999, 10, "orphan", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeem(t *testing.T) {
	svc, users, _, userID := newLoyaltyFixture(t, 150)

	result, err := svc.Redeem(userID, 120, nil)
	require.NoError(t, err)

	// 10 points buy 1 currency unit, floor division.
	assert.Equal(t, 12, result.Discount)
	assert.Equal(t, 30, result.Transaction.BalanceAfter)
	assert.Equal(t, string(models.RewardRedeemed), result.Transaction.Type)

	user, err := users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 30, user.RewardPoints)
}

func TestRedeem_InsufficientBalance(t *testing.T) {
	svc, users, rewards, userID := newLoyaltyFixture(t, 100)

	_, err := svc.Redeem(userID, 101, nil)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing was mutated.
	user, err := users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 100, user.RewardPoints)
	assert.Empty(t, rewards.transactionsFor(userID))
}

func TestRedeem_NonPositivePoints(t *testing.T) {
	svc, _, _, userID := newLoyaltyFixture(t, 100)

	_, err := svc.Redeem(userID, 0, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLedgerSnapshotChain(t *testing.T) {
	svc, users, rewards, userID := newLoyaltyFixture(t, 0)

	_, err := svc.Credit(userID, 200, "promo", nil)
	require.NoError(t, err)
	_, err = svc.Redeem(userID, 50, nil)
	require.NoError(t, err)
	_, err = svc.Credit(userID, 30, "order reward", nil)
	require.NoError(t, err)
	_, err = svc.Redeem(userID, 80, nil)
	require.NoError(t, err)

	txns := rewards.transactionsFor(userID)
	require.Len(t, txns, 4)

	// Each snapshot equals the previous one plus or minus the delta.
	balance := 0
	for _, txn := range txns {
		if txn.Type == string(models.RewardEarned) {
			balance += txn.Points
		} else {
			balance -= txn.Points
		}
		assert.Equal(t, balance, txn.BalanceAfter)
	}

	// The live balance equals the most recent snapshot.
	user, err := users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, txns[len(txns)-1].BalanceAfter, user.RewardPoints)
	assert.Equal(t, 100, user.RewardPoints)
}

func TestRedeem_Concurrent(t *testing.T) {
	svc, users, _, userID := newLoyaltyFixture(t, 100)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(userID, 30, nil)
			if err == nil {
				successCount.Add(1)
			} else if !errors.Is(err, ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// 100 points allow exactly three 30-point redemptions.
	assert.Equal(t, int32(3), successCount.Load())

	user, err := users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, user.RewardPoints)
}
