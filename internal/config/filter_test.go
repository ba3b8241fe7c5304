package config

import "testing"

func TestFilterMode_Valid(t *testing.T) {
	tests := []struct {
		mode FilterMode
		want bool
	}{
		{FilterAll, true},
		{FilterEven, true},
		{FilterOdd, true},
		{FilterMode(""), false},
		{FilterMode("EVEN"), false},
		{FilterMode("prime"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := tt.mode.Valid(); got != tt.want {
				t.Errorf("FilterMode(%q).Valid() = %v; want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestFilterMode_Accepts(t *testing.T) {
	tests := []struct {
		name  string
		mode  FilterMode
		order int
		want  bool
	}{
		{"all accepts even", FilterAll, 2, true},
		{"all accepts odd", FilterAll, 3, true},
		{"all accepts negative", FilterAll, -7, true},
		{"even accepts even", FilterEven, 4, true},
		{"even rejects odd", FilterEven, 5, false},
		{"even accepts zero", FilterEven, 0, true},
		{"even accepts negative even", FilterEven, -2, true},
		{"even rejects negative odd", FilterEven, -3, false},
		{"odd accepts odd", FilterOdd, 9, true},
		{"odd rejects even", FilterOdd, 8, false},
		{"odd rejects zero", FilterOdd, 0, false},
		{"odd accepts negative odd", FilterOdd, -3, true},
		{"odd rejects negative even", FilterOdd, -4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Accepts(tt.order); got != tt.want {
				t.Errorf("FilterMode(%q).Accepts(%d) = %v; want %v", tt.mode, tt.order, got, tt.want)
			}
		})
	}
}
