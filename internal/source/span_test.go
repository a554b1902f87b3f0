package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		other    Span
		expected Span
	}{
		{
			name:     "other extends both ends",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 5, End: 25},
			expected: Span{File: 1, Start: 5, End: 25},
		},
		{
			name:     "other inside",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 12, End: 18},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "different file is ignored",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 2, Start: 0, End: 50},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "zero span adopts other",
			span:     Span{File: 1},
			other:    Span{File: 1, Start: 3, End: 7},
			expected: Span{File: 1, Start: 3, End: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Cover(tt.other); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanBeforeAndContains(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 9}
	b := Span{File: 1, Start: 5, End: 6}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %v before %v", a, b)
	}
	if !a.Contains(b) {
		t.Fatalf("expected %v to contain %v", a, b)
	}
	if (Span{File: 2}).Before(a) {
		t.Fatalf("file ordering must dominate")
	}
}
