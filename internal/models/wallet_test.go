package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTierForAmount(t *testing.T) {
	cases := []struct {
		amount int64
		want   StakingTier
	}{
		{1, TierBronze},
		{9999, TierBronze},
		{10000, TierSilver},
		{49999, TierSilver},
		{50000, TierGold},
		{99999, TierGold},
		{100000, TierPlatinum},
		{5000000, TierPlatinum},
	}

	for _, tc := range cases {
		got := TierForAmount(decimal.NewFromInt(tc.amount))
		if got != tc.want {
			t.Errorf("TierForAmount(%d) = %s, want %s", tc.amount, got, tc.want)
		}
	}
}

func TestValidStakingDuration(t *testing.T) {
	for _, d := range []int{30, 90, 180, 365} {
		if !ValidStakingDuration(d) {
			t.Errorf("expected %d to be a valid duration", d)
		}
	}
	for _, d := range []int{0, 1, 45, 60, 364, 366} {
		if ValidStakingDuration(d) {
			t.Errorf("expected %d to be rejected", d)
		}
	}
}

func TestBalanceByTokenType(t *testing.T) {
	w := Wallet{
		GACBalance: decimal.NewFromInt(10),
		PACBalance: decimal.NewFromInt(20),
	}

	if !w.Balance(TokenGAC).Equal(decimal.NewFromInt(10)) {
		t.Errorf("GAC balance lookup wrong")
	}
	if !w.Balance(TokenPAC).Equal(decimal.NewFromInt(20)) {
		t.Errorf("PAC balance lookup wrong")
	}

	w.SetBalance(TokenGAC, decimal.NewFromInt(99))
	if !w.GACBalance.Equal(decimal.NewFromInt(99)) {
		t.Errorf("SetBalance did not write GAC")
	}
	if !w.PACBalance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("SetBalance must not touch the other balance")
	}
}
