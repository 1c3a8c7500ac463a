package oilconfig

import "testing"

func TestGDPRApplies(t *testing.T) {
	tests := []struct {
		name string
		raw  RawConfig
		want bool
	}{
		{"no configuration", nil, true},
		{"applies globally", RawConfig{"gdpr_applies_globally": true}, true},
		{"does not apply globally", RawConfig{"gdpr_applies_globally": false}, false},
		{"explicit true wins over globally false", RawConfig{"gdpr_applies": true, "gdpr_applies_globally": false}, true},
		{"explicit false", RawConfig{"gdpr_applies": false}, false},
		{"explicit false wins over globally true", RawConfig{"gdpr_applies": false, "gdpr_applies_globally": true}, false},
		{"non-boolean values ignored", RawConfig{"gdpr_applies": "no", "gdpr_applies_globally": 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(tt.raw)
			if got := r.GDPRApplies(); got != tt.want {
				t.Errorf("GDPRApplies() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGDPRAppliesFromFixture(t *testing.T) {
	r, _ := newTestResolver(loadFixture(t, "gdpr_not_applies"))
	if r.GDPRApplies() {
		t.Error("GDPRApplies() = true, want false")
	}
}

func TestSetGDPRAppliesAfterInitialisation(t *testing.T) {
	r, _ := newTestResolver(loadFixture(t, "gdpr_not_applies"))

	r.SetGDPRApplies(true)
	if !r.GDPRApplies() {
		t.Error("GDPRApplies() after SetGDPRApplies(true) = false, want true")
	}
}

func TestSetGDPRAppliesToggles(t *testing.T) {
	r, _ := newTestResolver(loadFixture(t, "gdpr_not_applies"))

	steps := []struct {
		set  *bool
		want bool
	}{
		{nil, false},
		{boolPtr(true), true},
		{boolPtr(true), true},
		{boolPtr(false), false},
		{boolPtr(false), false},
		{boolPtr(true), true},
	}

	for i, step := range steps {
		if step.set != nil {
			r.SetGDPRApplies(*step.set)
		}
		if got := r.GDPRApplies(); got != step.want {
			t.Errorf("step %d: GDPRApplies() = %v, want %v", i, got, step.want)
		}
	}
}

func TestGDPRAppliesIsNotRederived(t *testing.T) {
	raw := RawConfig{}
	r, _ := newTestResolver(raw)

	if !r.GDPRApplies() {
		t.Fatal("GDPRApplies() = false, want true")
	}

	// Editing the record after resolution has no effect.
	raw[KeyGDPRAppliesGlobally] = false
	if !r.GDPRApplies() {
		t.Error("GDPRApplies() changed after the record was edited")
	}
}

func TestSetGDPRAppliesBeforeFirstRead(t *testing.T) {
	r, _ := newTestResolver(RawConfig{"gdpr_applies_globally": true})

	r.SetGDPRApplies(false)
	if r.GDPRApplies() {
		t.Error("GDPRApplies() = true, want the explicitly set false")
	}
}

func boolPtr(b bool) *bool { return &b }
