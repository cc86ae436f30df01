package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/x", 1},
		{"/x?page=3", 3},
		{"/x?page=0", 1},
		{"/x?page=-2", 1},
		{"/x?page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := ParsePage(r); got != tt.want {
			t.Errorf("ParsePage(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/x", PageSize},
		{"/x?limit=10", 10},
		{"/x?limit=0", PageSize},
		{"/x?limit=100000", MaxPageSize},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := ParseLimit(r); got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 50); got != 0 {
		t.Errorf("Offset(1, 50) = %d, want 0", got)
	}
	if got := Offset(3, 20); got != 40 {
		t.Errorf("Offset(3, 20) = %d, want 40", got)
	}
	if got := Offset(0, 20); got != 0 {
		t.Errorf("Offset(0, 20) = %d, want 0", got)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		size  int
		total int64
		want  Window
	}{
		{"empty", 1, 50, 0, Window{Page: 1, TotalPages: 1}},
		{"single page", 1, 50, 50, Window{Page: 1, TotalPages: 1, Total: 50}},
		{"first of three", 1, 10, 25, Window{Page: 1, TotalPages: 3, Total: 25, HasNext: true}},
		{"middle", 2, 10, 25, Window{Page: 2, TotalPages: 3, Total: 25, HasPrev: true, HasNext: true}},
		{"last", 3, 10, 25, Window{Page: 3, TotalPages: 3, Total: 25, HasPrev: true}},
		{"past the end", 9, 10, 25, Window{Page: 9, TotalPages: 3, Total: 25, HasPrev: true}},
		{"zero size uses default", 1, 0, 120, Window{Page: 1, TotalPages: 3, Total: 120, HasNext: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.page, tt.size, tt.total); got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
