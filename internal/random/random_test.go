package random

import "testing"

func TestLetters(t *testing.T) {
	tests := []struct {
		name    string
		length  uint
		wantErr bool
	}{
		{
			name:    "zero length",
			length:  0,
			wantErr: false,
		},
		{
			name:    "32 length",
			length:  32,
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Letters(tt.length)
			if (err != nil) != tt.wantErr {
				t.Errorf("Letters() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if uint(len(got)) != tt.length {
				t.Errorf("Letters() got length = %v, want length %v", len(got), tt.length)
			}
		})
	}
}

func TestLetters_usesWholeAlphabet(t *testing.T) {
	got, err := Letters(512)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[rune]bool{}
	for _, r := range got {
		seen[r] = true
	}
	// With 512 draws from 52 letters, seeing fewer than 10 distinct letters means the index range is broken.
	if len(seen) < 10 {
		t.Errorf("Letters() produced only %d distinct letters", len(seen))
	}
}
