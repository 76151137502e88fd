package examgen

import (
	"strings"
	"testing"
)

func TestStructuralValidator(t *testing.T) {
	good := Draft{Text: "Enunciado", Options: []string{"a", "b", "c", "d"}, Correct: 2}

	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr string
	}{
		{"valid", func(*Draft) {}, ""},
		{"empty text", func(d *Draft) { d.Text = "  " }, "text is empty"},
		{"long text", func(d *Draft) { d.Text = strings.Repeat("x", maxTextLen+1) }, "text exceeds"},
		{"three options", func(d *Draft) { d.Options = d.Options[:3] }, "expected 4 options"},
		{"empty option", func(d *Draft) { d.Options = []string{"a", "", "c", "d"} }, "option 1 is empty"},
		{"negative correct", func(d *Draft) { d.Correct = -1 }, "out of range"},
		{"correct too high", func(d *Draft) { d.Correct = 4 }, "out of range"},
	}

	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := good
			d.Options = append([]string(nil), good.Options...)
			tt.mutate(&d)
			err := v.Validate(d)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Message, tt.wantErr) {
				t.Errorf("message %q does not contain %q", err.Message, tt.wantErr)
			}
			if !err.Retryable {
				t.Error("structural failures should be retryable")
			}
		})
	}
}

func TestDistinctOptionsValidator(t *testing.T) {
	v := &DistinctOptionsValidator{}

	if err := v.Validate(Draft{Options: []string{"a", "b", "c", "d"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := v.Validate(Draft{Options: []string{"Planejar", "Executar", "  planejar ", "Medir"}})
	if err == nil {
		t.Fatal("expected duplicate detection")
	}
	if err.Validator != "distinct-options" {
		t.Errorf("validator = %q", err.Validator)
	}
	if !strings.Contains(err.Error(), "options 0 and 2") {
		t.Errorf("unexpected message: %v", err)
	}
}
