package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpecialization(t *testing.T) {
	cases := map[string]Specialization{
		"Plumber":             SpecializationPlumbing,
		"plumbing":            SpecializationPlumbing,
		"Electrician":         SpecializationElectrical,
		"HVAC Tech":           SpecializationHVAC,
		"appliance repair":    SpecializationApplianceRepair,
		"Locksmith":           SpecializationLocksmith,
		"painter":             SpecializationPainting,
		"Carpenter":           SpecializationCarpentry,
		"handyman":            SpecializationGeneralMaintenance,
		"":                    SpecializationGeneralMaintenance,
		"underwater welding":  SpecializationGeneralMaintenance,
		"General Maintenance": SpecializationGeneralMaintenance,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeSpecialization(raw), "input %q", raw)
	}
}

func TestCovers(t *testing.T) {
	assert.True(t, SpecializationPlumbing.Covers(SpecializationPlumbing))
	assert.False(t, SpecializationPlumbing.Covers(SpecializationElectrical))

	// General Maintenance is a universal fallback on both sides.
	assert.True(t, SpecializationGeneralMaintenance.Covers(SpecializationElectrical))
	assert.True(t, SpecializationPainting.Covers(SpecializationGeneralMaintenance))
}

func TestInferRequiredSpecialization(t *testing.T) {
	cases := []struct {
		title, description string
		want               Specialization
	}{
		{"Leaking pipe under the sink", "water everywhere", SpecializationPlumbing},
		{"Sparking outlet in bedroom", "", SpecializationElectrical},
		{"Furnace makes noise", "heating barely works", SpecializationHVAC},
		{"Refrigerator not cooling food", "", SpecializationApplianceRepair},
		{"Broken closet door", "hinge came loose", SpecializationCarpentry},
		{"Peeling ceiling", "needs repaint", SpecializationPainting},
		{"Strange smell in hallway", "", SpecializationGeneralMaintenance},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, InferRequiredSpecialization(tc.title, tc.description), "title %q", tc.title)
	}
}

// A jammed door lock mentions both lock and door; the locksmith category must
// win over carpentry.
func TestInferRequiredSpecializationKeywordPriority(t *testing.T) {
	assert.Equal(t, SpecializationLocksmith, InferRequiredSpecialization("Front door lock jammed", "cannot turn the key"))
	assert.Equal(t, SpecializationApplianceRepair, InferRequiredSpecialization("Dishwasher door will not close", ""))
	assert.Equal(t, SpecializationApplianceRepair, InferRequiredSpecialization("Fridge stopped cooling overnight", ""))
	assert.Equal(t, SpecializationHVAC, InferRequiredSpecialization("Cooling barely works in the bedroom", ""))
}
