package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tonsurance/vault/internal/util"
)

func TestTranche_NAV_AtEpoch(t *testing.T) {
	epoch := time.Now()
	tr := NewTranche(BTC, epoch)
	nav := tr.NAV(epoch)
	assert.Equal(t, 0, nav.Cmp(util.Ray), "NAV at epoch with no yield or losses should be exactly 1.0")
}

func TestTranche_NAV_Curves_Increase(t *testing.T) {
	epoch := time.Now()
	later := epoch.Add(365 * 24 * time.Hour)

	for id := range defaultTrancheSpecs {
		t.Run(id.String(), func(t *testing.T) {
			tr := NewTranche(id, epoch)
			navAtEpoch := tr.NAV(epoch)
			navLater := tr.NAV(later)
			assert.True(t, navLater.Cmp(navAtEpoch) >= 0, "NAV should be non-decreasing over time for %s", id)
		})
	}
}

func TestTranche_NAV_EQTCapped(t *testing.T) {
	epoch := time.Now()
	farFuture := epoch.Add(50 * 365 * 24 * time.Hour)
	tr := NewTranche(EQT, epoch)
	nav := tr.NAV(farFuture)
	cap := util.RayFromFloat(1.25)
	assert.True(t, nav.Cmp(cap) <= 0, "EQT NAV must never exceed its 1.25 cap")
}

func TestSharesForDeposit_And_PayoutForShares_RoundTrip(t *testing.T) {
	nav := util.Ray // NAV == 1.0
	amount := big.NewInt(1000)
	shares := SharesForDeposit(amount, nav)
	assert.Equal(t, amount, shares)

	payout := PayoutForShares(shares, nav)
	assert.Equal(t, amount, payout)
}

func TestCurveValue_Flat(t *testing.T) {
	v := curveValue(CurveFlat, 0.02, 1.0, 0)
	assert.InDelta(t, 1.02, v, 1e-9)
}

func TestCurveValue_CappedExponential(t *testing.T) {
	v := curveValue(CurveCappedExponential, 0.4, 100, 1.25)
	assert.Equal(t, 1.25, v)
}
