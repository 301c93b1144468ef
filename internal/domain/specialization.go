package domain

import "strings"

// Specialization is a canonical worker trade category.
type Specialization string

const (
	SpecializationPlumbing           Specialization = "Plumbing"
	SpecializationElectrical         Specialization = "Electrical"
	SpecializationHVAC               Specialization = "HVAC"
	SpecializationApplianceRepair    Specialization = "Appliance Repair"
	SpecializationLocksmith          Specialization = "Locksmith"
	SpecializationPainting           Specialization = "Painting"
	SpecializationCarpentry          Specialization = "Carpentry"
	SpecializationGeneralMaintenance Specialization = "General Maintenance"
)

// Specializations lists every canonical category.
var Specializations = []Specialization{
	SpecializationPlumbing,
	SpecializationElectrical,
	SpecializationHVAC,
	SpecializationApplianceRepair,
	SpecializationLocksmith,
	SpecializationPainting,
	SpecializationCarpentry,
	SpecializationGeneralMaintenance,
}

// specializationSynonyms maps informal trade names to canonical categories.
var specializationSynonyms = map[string]Specialization{
	"plumber":              SpecializationPlumbing,
	"plumbing":             SpecializationPlumbing,
	"electrician":          SpecializationElectrical,
	"electrical":           SpecializationElectrical,
	"hvac":                 SpecializationHVAC,
	"hvac technician":      SpecializationHVAC,
	"hvac tech":            SpecializationHVAC,
	"appliance repair":     SpecializationApplianceRepair,
	"appliance technician": SpecializationApplianceRepair,
	"locksmith":            SpecializationLocksmith,
	"painter":              SpecializationPainting,
	"painting":             SpecializationPainting,
	"carpenter":            SpecializationCarpentry,
	"carpentry":            SpecializationCarpentry,
	"handyman":             SpecializationGeneralMaintenance,
	"general":              SpecializationGeneralMaintenance,
	"general maintenance":  SpecializationGeneralMaintenance,
}

// NormalizeSpecialization resolves an informal trade name to its canonical
// category. Unknown values fall back to General Maintenance.
func NormalizeSpecialization(raw string) Specialization {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return SpecializationGeneralMaintenance
	}
	if canonical, ok := specializationSynonyms[trimmed]; ok {
		return canonical
	}
	for _, spec := range Specializations {
		if strings.EqualFold(string(spec), trimmed) {
			return spec
		}
	}
	return SpecializationGeneralMaintenance
}

// Covers reports whether a worker holding the receiver specialization may
// work a job requiring the given one. General Maintenance is the universal
// fallback on both sides.
func (s Specialization) Covers(required Specialization) bool {
	if s == required {
		return true
	}
	if s == SpecializationGeneralMaintenance || required == SpecializationGeneralMaintenance {
		return true
	}
	return false
}

// specializationKeywords is evaluated in order: more specific categories come
// before general ones so that, e.g., a jammed door lock classifies as
// Locksmith rather than Carpentry, and a refrigerator that stopped cooling as
// Appliance Repair rather than HVAC. Reordering changes classification results.
var specializationKeywords = []struct {
	category Specialization
	keywords []string
}{
	{SpecializationPlumbing, []string{"leak", "pipe", "faucet", "drain", "toilet", "sink", "water heater", "plumb"}},
	{SpecializationElectrical, []string{"electric", "outlet", "wiring", "breaker", "light switch", "power", "sparking"}},
	{SpecializationApplianceRepair, []string{"appliance", "refrigerator", "fridge", "dishwasher", "washer", "dryer", "oven", "stove", "microwave"}},
	{SpecializationHVAC, []string{"hvac", "heating", "furnace", "air condition", "thermostat", "ventilation", "cooling", "radiator"}},
	{SpecializationLocksmith, []string{"lock", "key", "deadbolt", "latch"}},
	{SpecializationPainting, []string{"paint", "repaint", "peeling"}},
	{SpecializationCarpentry, []string{"door", "window", "cabinet", "shelf", "floorboard", "wood", "drywall", "frame"}},
}

// InferRequiredSpecialization classifies a request's free text into the
// canonical category whose keywords match first. No match means General
// Maintenance.
func InferRequiredSpecialization(title, description string) Specialization {
	text := strings.ToLower(title + " " + description)
	for _, entry := range specializationKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.category
			}
		}
	}
	return SpecializationGeneralMaintenance
}
