package currency

import "testing"

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		from    Unit
		to      Unit
		want    float64
		wantErr bool
	}{
		{"same unit", 12.5, Emerald, Emerald, 12.5, false},
		{"emeralds to blocks", 18, Emerald, EmeraldBlock, 2, false},
		{"blocks to emeralds", 1.5, EmeraldBlock, Emerald, 13.5, false},
		{"unknown from", 1, Unit("diamond"), Emerald, 0, true},
		{"unknown to", 1, Emerald, Unit(""), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.amount, tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		unit   Unit
		want   string
	}{
		{"emeralds", 9.5, Emerald, "9.50 emeralds"},
		{"blocks", 2, EmeraldBlock, "2.00 emerald blocks"},
		{"rounding", 1.005, Emerald, "1.00 emeralds"},
		{"unknown unit", 3, Unit("gold"), "3.00 gold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.amount, tt.unit); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}
