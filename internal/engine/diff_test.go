package engine

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		original map[string]string
		form     map[string]string
		want     map[string]string
	}{
		{
			name:     "unchanged form is empty diff",
			original: map[string]string{"brand": "Dell", "model": "R540"},
			form:     map[string]string{"brand": "Dell", "model": "R540"},
			want:     map[string]string{},
		},
		{
			name:     "only changed fields kept",
			original: map[string]string{"brand": "Dell", "model": "R540"},
			form:     map[string]string{"brand": "HP", "model": "R540"},
			want:     map[string]string{"brand": "HP"},
		},
		{
			name:     "empty values never travel",
			original: map[string]string{"brand": "Dell", "notes": "rack 4"},
			form:     map[string]string{"brand": "Dell", "notes": ""},
			want:     map[string]string{},
		},
		{
			name:     "field absent from snapshot is a change",
			original: map[string]string{"brand": "Dell"},
			form:     map[string]string{"brand": "Dell", "notes": "rack 4"},
			want:     map[string]string{"notes": "rack 4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.original, tt.form)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff() = %v, want %v", got, tt.want)
			}
		})
	}
}
