package stage

import "testing"

func TestComputeChecklistOrder(t *testing.T) {
	tests := []struct {
		name      string
		profile   map[string]string
		wantStage string
		wantFocus string
	}{
		{
			name:      "empty profile starts at need",
			profile:   map[string]string{},
			wantStage: "discover",
			wantFocus: FocusNeed,
		},
		{
			name:      "need known moves to timeline",
			profile:   map[string]string{"product_name": "12 Oak St"},
			wantStage: "timeline",
			wantFocus: FocusTimeline,
		},
		{
			name: "summary also satisfies need",
			profile: map[string]string{
				"summary": "wants a tour",
			},
			wantStage: "timeline",
			wantFocus: FocusTimeline,
		},
		{
			name: "urgency satisfies timeline",
			profile: map[string]string{
				"product_name": "12 Oak St",
				"urgency":      "this_week",
			},
			wantStage: "constraints",
			wantFocus: FocusConstraints,
		},
		{
			name: "constraints then budget",
			profile: map[string]string{
				"product_name": "12 Oak St",
				"urgency":      "this_week",
				"consult_type": "in-person",
			},
			wantStage: "budget",
			wantFocus: FocusBudget,
		},
		{
			name: "contact requires name too",
			profile: map[string]string{
				"product_name":  "12 Oak St",
				"urgency":       "this_week",
				"consult_type":  "in-person",
				"budget":        "500k",
				"contact_email": "a@b.com",
			},
			wantStage: "contact",
			wantFocus: FocusContact,
		},
		{
			name: "all known yields schedule",
			profile: map[string]string{
				"product_name":  "12 Oak St",
				"urgency":       "this_week",
				"consult_type":  "in-person",
				"budget":        "500k",
				"contact_email": "a@b.com",
				"contact_name":  "Jane",
			},
			wantStage: "schedule",
			wantFocus: FocusSchedule,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStage, gotFocus := Compute(tt.profile)
			if gotStage != tt.wantStage || gotFocus != tt.wantFocus {
				t.Errorf("Compute() = (%q, %q), want (%q, %q)", gotStage, gotFocus, tt.wantStage, tt.wantFocus)
			}
		})
	}
}

func TestComputeUnknownUrgencyDoesNotSatisfyTimeline(t *testing.T) {
	_, focus := Compute(map[string]string{
		"product_name": "12 Oak St",
		"urgency":      "unknown",
	})
	if focus != FocusTimeline {
		t.Errorf("focus = %q, want %q", focus, FocusTimeline)
	}
}

func TestFallbackQuestion(t *testing.T) {
	if got := FallbackQuestion(FocusSchedule, false); got != Questions[FocusTimeline] {
		t.Errorf("schedule without invitation = %q, want timeline question", got)
	}
	if got := FallbackQuestion(FocusSchedule, true); got != Questions[FocusSchedule] {
		t.Errorf("schedule with invitation = %q", got)
	}
	if got := FallbackQuestion("bogus", false); got != Questions[FocusTimeline] {
		t.Errorf("unknown focus = %q, want timeline question", got)
	}
}
