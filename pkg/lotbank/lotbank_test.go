package lotbank

import (
	"math"
	"testing"
)

func sampleProducts() []Product {
	return []Product{
		{ProductID: "50ft", LotCount: 10, RetailLotPrice: 100000, DepositPct: 20},
		{ProductID: "40ft", LotCount: 5, RetailLotPrice: 80000, DepositPct: 25, DepositCapPct: 15},
	}
}

func sampleTakedowns(periodCount int) []map[string]int {
	lots := make([]map[string]int, periodCount)
	for i := range lots {
		lots[i] = map[string]int{}
	}
	lots[2] = map[string]int{"50ft": 4}
	lots[5] = map[string]int{"50ft": 6, "40ft": 5}
	return lots
}

func TestBuildInitialDeposits(t *testing.T) {
	sched, err := Build(nil, sampleProducts(), Terms{}, sampleTakedowns(12), 12)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// 50ft: 20% of 100000 = 20000 per lot, 10 lots = 200000.
	// 40ft: 25% of 80000 capped at 15% = 12000 per lot, 5 lots = 60000.
	if math.Abs(sched.TotalInitialDeposit-260000) > 1e-9 {
		t.Errorf("total initial deposit = %.2f, expected 260000", sched.TotalInitialDeposit)
	}
	if math.Abs(sched.InitialDeposits[0]-260000) > 1e-9 {
		t.Errorf("period 1 deposit = %.2f, expected the full 260000", sched.InitialDeposits[0])
	}
	for p := 1; p < 12; p++ {
		if sched.InitialDeposits[p] != 0 {
			t.Errorf("period %d deposit = %.2f, expected 0", p+1, sched.InitialDeposits[p])
		}
	}
}

func TestBuildDepositCredits(t *testing.T) {
	sched, err := Build(nil, sampleProducts(), Terms{}, sampleTakedowns(12), 12)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// 4 lots of 50ft at 20000 each come back in period 3.
	if math.Abs(sched.DepositCredits[2]-(-80000)) > 1e-9 {
		t.Errorf("period 3 credit = %.2f, expected -80000", sched.DepositCredits[2])
	}
	// 6 of 50ft plus 5 of 40ft in period 6: 120000 + 60000.
	if math.Abs(sched.DepositCredits[5]-(-180000)) > 1e-9 {
		t.Errorf("period 6 credit = %.2f, expected -180000", sched.DepositCredits[5])
	}

	// Everything deposited comes back out once all lots sell.
	totalCredits := 0.0
	for _, credit := range sched.DepositCredits {
		totalCredits += credit
	}
	if math.Abs(totalCredits+sched.TotalInitialDeposit) > 1e-9 {
		t.Errorf("total credits %.2f do not offset deposits %.2f", totalCredits, sched.TotalInitialDeposit)
	}
}

func TestBuildLotsRemaining(t *testing.T) {
	sched, err := Build(nil, sampleProducts(), Terms{}, sampleTakedowns(12), 12)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	remaining := sched.LotsRemainingByProduct["50ft"]
	if remaining == nil {
		t.Fatal("missing lots-remaining track for 50ft")
	}
	if remaining[0] != 10 || remaining[2] != 6 || remaining[5] != 0 || remaining[11] != 0 {
		t.Errorf("50ft remaining = %v, expected 10 before sales, 6 after period 3, 0 after period 6", remaining)
	}
	for _, track := range sched.LotsRemainingByProduct {
		for p := 1; p < len(track); p++ {
			if track[p] > track[p-1] {
				t.Errorf("lots remaining increased from %d to %d at period %d", track[p-1], track[p], p+1)
			}
			if track[p] < 0 {
				t.Errorf("lots remaining negative at period %d", p+1)
			}
		}
	}
}

func TestBuildFeesTrackRemainingValue(t *testing.T) {
	terms := Terms{ManagementFeePct: 1.2, DefaultProvisionPct: 0.6}
	sched, err := Build(nil, sampleProducts()[:1], terms, sampleTakedowns(12), 12)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// 10 lots at 100000: 1.2%/yr of 1000000 is 1000/month.
	if math.Abs(sched.ManagementFees[0]-(-1000)) > 1e-9 {
		t.Errorf("period 1 management fee = %.2f, expected -1000", sched.ManagementFees[0])
	}
	if math.Abs(sched.DefaultProvisions[0]-(-500)) > 1e-9 {
		t.Errorf("period 1 default provision = %.2f, expected -500", sched.DefaultProvisions[0])
	}
	// After 4 lots sell the remaining value is 600000, so the fee shrinks.
	if math.Abs(sched.ManagementFees[2]-(-600)) > 1e-9 {
		t.Errorf("period 3 management fee = %.2f, expected -600", sched.ManagementFees[2])
	}
	// No lots left after period 6, no fees after.
	for p := 5; p < 12; p++ {
		if sched.ManagementFees[p] != 0 || sched.DefaultProvisions[p] != 0 {
			t.Errorf("period %d fees = %.2f / %.2f, expected 0 with no lots remaining",
				p+1, sched.ManagementFees[p], sched.DefaultProvisions[p])
		}
	}
}

func TestBuildUnderwritingFee(t *testing.T) {
	sched, err := Build(nil, sampleProducts(), Terms{UnderwritingFee: 25000}, sampleTakedowns(6), 6)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if sched.UnderwritingFees[0] != -25000 {
		t.Errorf("period 1 underwriting fee = %.2f, expected -25000", sched.UnderwritingFees[0])
	}
	for p := 1; p < 6; p++ {
		if sched.UnderwritingFees[p] != 0 {
			t.Errorf("period %d underwriting fee = %.2f, expected 0", p+1, sched.UnderwritingFees[p])
		}
	}
}

func TestBuildSkipsEmptyProducts(t *testing.T) {
	products := []Product{
		{ProductID: "empty", LotCount: 0, RetailLotPrice: 100000, DepositPct: 20},
		{ProductID: "unpriced", LotCount: 10, RetailLotPrice: 0, DepositPct: 20},
	}
	sched, err := Build(nil, products, Terms{}, sampleTakedowns(6), 6)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if sched.TotalInitialDeposit != 0 {
		t.Errorf("total deposit = %.2f, expected 0 with no viable products", sched.TotalInitialDeposit)
	}
	if len(sched.LotsRemainingByProduct) != 0 {
		t.Errorf("lots-remaining tracks = %d, expected none", len(sched.LotsRemainingByProduct))
	}
}

func TestBuildOversoldClampsToInventory(t *testing.T) {
	lots := sampleTakedowns(6)
	lots[2] = map[string]int{"50ft": 25}
	sched, err := Build(nil, sampleProducts()[:1], Terms{}, lots, 6)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// Only 10 lots exist, so only 10 deposits can come back.
	if math.Abs(sched.DepositCredits[2]-(-200000)) > 1e-9 {
		t.Errorf("period 3 credit = %.2f, expected -200000 for the full inventory", sched.DepositCredits[2])
	}
	if sched.LotsRemainingByProduct["50ft"][2] != 0 {
		t.Errorf("lots remaining = %d, expected 0", sched.LotsRemainingByProduct["50ft"][2])
	}
}

func TestBuildInvalidPeriodCount(t *testing.T) {
	if _, err := Build(nil, sampleProducts(), Terms{}, nil, 0); err == nil {
		t.Error("Build() expected error for zero period count")
	}
}
