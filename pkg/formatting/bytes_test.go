package formatting_test

import (
	"testing"

	"github.com/JaimeStill/medbrief/pkg/formatting"
)

const mib = 1 << 20

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"4096", 4096, false},
		{"20MB", 20 * mib, false},
		{"20 mb", 20 * mib, false},
		{" 1.5GiB ", 3 << 29, false},
		{"512KiB", 512 << 10, false},
		{"0", 0, false},
		{"", 0, true},
		{"MB", 0, true},
		{"-5MB", 0, true},
		{"10 furlongs", 0, true},
		{"1.2.3MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 2, "0.00 B"},
		{500, 0, "500 B"},
		{1024, 0, "1 KB"},
		{1536, 1, "1.5 KB"},
		{20 * mib, 0, "20 MB"},
		{20 * mib, -3, "20 MB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}

func TestUploadLimitRoundTrip(t *testing.T) {
	for _, limit := range []int64{1 << 10, 20 * mib, 1 << 30} {
		got, err := formatting.ParseBytes(formatting.FormatBytes(limit, 0))
		if err != nil || got != limit {
			t.Errorf("round trip %d = %d, %v", limit, got, err)
		}
	}
}
