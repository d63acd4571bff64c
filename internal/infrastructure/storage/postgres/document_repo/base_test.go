package document_repo

import "testing"

func TestSnakeToCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"entry_no", "entryNo"},
		{"supplier_bill_no", "supplierBillNo"},
		{"bill_no", "billNo"},
		{"name", "name"},
		{"trailing_", "trailing"},
	}

	for _, tt := range tests {
		if got := snakeToCamel(tt.in); got != tt.want {
			t.Errorf("snakeToCamel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
