package charts

import (
	"bytes"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestSpendingPie(t *testing.T) {
	png, err := SpendingPie([]CategoryTotal{
		{Category: "food", Amount: 320},
		{Category: "transport", Amount: 120},
		{Category: "entertainment", Amount: 60},
	})
	if err != nil {
		t.Fatalf("SpendingPie failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Error("expected PNG output")
	}
}

func TestSpendingPie_NoData(t *testing.T) {
	png, err := SpendingPie(nil)
	if err != nil {
		t.Fatalf("SpendingPie failed: %v", err)
	}
	if png != nil {
		t.Error("expected nil for empty input")
	}

	png, err = SpendingPie([]CategoryTotal{{Category: "food", Amount: 0}})
	if err != nil {
		t.Fatalf("SpendingPie failed: %v", err)
	}
	if png != nil {
		t.Error("expected nil for zero totals")
	}
}

func TestCashFlowBar(t *testing.T) {
	png, err := CashFlowBar(3000, 1800)
	if err != nil {
		t.Fatalf("CashFlowBar failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Error("expected PNG output")
	}
}

func TestCashFlowBar_NoData(t *testing.T) {
	png, err := CashFlowBar(0, 0)
	if err != nil {
		t.Fatalf("CashFlowBar failed: %v", err)
	}
	if png != nil {
		t.Error("expected nil when both sides are zero")
	}
}
