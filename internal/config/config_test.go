package config

import (
	"reflect"
	"testing"
)

func TestParseRemindDays(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{"vacío usa el default", "", []int{7, 1, 0}},
		{"lista válida", "7,1,0", []int{7, 1, 0}},
		{"con espacios", " 3 , 1 ", []int{3, 1}},
		{"ignora basura", "7,x,99,-1,0", []int{7, 0}},
		{"todo inválido usa el default", "x,y", []int{7, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRemindDays(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseRemindDays(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
