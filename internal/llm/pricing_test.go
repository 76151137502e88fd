package llm

import "testing"

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model     string
		wantInput float64
		wantNil   bool
	}{
		{"gemini-2.0-flash", 0.1, false},
		{"google/gemini-2.0-flash-exp", 0.1, false},
		{"models/gemini-2.5-pro", 1.25, false},
		{"gpt-4o-mini", 0.15, false},
		{"claude-haiku-4-5-20251001", 1, false},
		{"GPT-4O", 2.5, false},
		{"llama-3-70b", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := LookupCost(tt.model)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected pricing")
			}
			if got.InputPerMTok != tt.wantInput {
				t.Errorf("input price = %v, want %v", got.InputPerMTok, tt.wantInput)
			}
		})
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 4}
	if got := c.Cost(500_000, 250_000); got != 1.5 {
		t.Errorf("Cost = %v, want 1.5", got)
	}
}
