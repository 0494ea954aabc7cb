package core

import "testing"

func deposit(a string) PropertyTransaction {
	return PropertyTransaction{ID: "d" + a, Amount: amt(a)}
}

func expense(e string) PropertyTransaction {
	return PropertyTransaction{ID: "e" + e, Stamp: dec(e)}
}

func TestPartitionBlocks(t *testing.T) {
	tests := []struct {
		name       string
		txns       []PropertyTransaction
		sizes      []int
		remainings []string
	}{
		{
			name:  "empty ledger",
			txns:  nil,
			sizes: nil,
		},
		{
			name:       "two deposits",
			txns:       []PropertyTransaction{deposit("100"), expense("20"), deposit("50"), expense("10"), expense("5")},
			sizes:      []int{2, 3},
			remainings: []string{"80", "35"},
		},
		{
			name:       "leading expense joins first deposit",
			txns:       []PropertyTransaction{expense("5"), deposit("100"), expense("20")},
			sizes:      []int{3},
			remainings: []string{"75"},
		},
		{
			name:       "no deposits",
			txns:       []PropertyTransaction{expense("1"), expense("2"), {ID: "zero", Amount: amt("0"), Stamp: dec("3")}},
			sizes:      []int{3},
			remainings: []string{"-6"},
		},
		{
			name:       "single deposit",
			txns:       []PropertyTransaction{deposit("10")},
			sizes:      []int{1},
			remainings: []string{"10"},
		},
		{
			name:       "consecutive deposits",
			txns:       []PropertyTransaction{deposit("10"), deposit("20"), deposit("30")},
			sizes:      []int{1, 1, 1},
			remainings: []string{"10", "20", "30"},
		},
		{
			name:       "trailing deposit closes final block",
			txns:       []PropertyTransaction{deposit("10"), expense("4"), deposit("7")},
			sizes:      []int{2, 1},
			remainings: []string{"6", "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := PartitionBlocks(tt.txns)
			if len(blocks) != len(tt.sizes) {
				t.Fatalf("got %d blocks, want %d", len(blocks), len(tt.sizes))
			}
			seen := 0
			for i, b := range blocks {
				if b.Index != i {
					t.Errorf("block %d has index %d", i, b.Index)
				}
				if len(b.Rows) != tt.sizes[i] {
					t.Errorf("block %d has %d rows, want %d", i, len(b.Rows), tt.sizes[i])
				}
				if !b.Remaining.Equal(dec(tt.remainings[i])) {
					t.Errorf("block %d remaining = %s, want %s", i, b.Remaining, tt.remainings[i])
				}
				for j, r := range b.Rows {
					last := j == len(b.Rows)-1
					if r.ShowRemaining != last {
						t.Errorf("block %d row %d ShowRemaining = %v", i, j, r.ShowRemaining)
					}
					if r.Transaction.ID != tt.txns[seen].ID {
						t.Errorf("row order broken at %d: %s", seen, r.Transaction.ID)
					}
					seen++
				}
				if !b.Rows[len(b.Rows)-1].Balance.Equal(b.Remaining) {
					t.Errorf("block %d last balance %s != remaining %s", i, b.Rows[len(b.Rows)-1].Balance, b.Remaining)
				}
			}
		})
	}
}

func TestPartitionBlocksRunningBalance(t *testing.T) {
	blocks := PartitionBlocks([]PropertyTransaction{deposit("100"), expense("20"), expense("30")})
	want := []string{"100", "80", "50"}
	for i, r := range blocks[0].Rows {
		if !r.Balance.Equal(dec(want[i])) {
			t.Fatalf("row %d balance = %s, want %s", i, r.Balance, want[i])
		}
	}
	if !blocks[0].Anchor.Equal(dec("100")) {
		t.Fatalf("anchor = %s", blocks[0].Anchor)
	}
}

func TestPartitionBlocksDoesNotMutate(t *testing.T) {
	txns := []PropertyTransaction{deposit("10"), expense("1")}
	_ = PartitionBlocks(txns)
	if txns[0].ID != "d10" || txns[1].ID != "e1" || !txns[0].Amount.Equal(dec("10")) {
		t.Fatalf("input mutated: %+v", txns)
	}
}
