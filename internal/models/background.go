package models

// SkillKey identifies one of the five skill counters.
type SkillKey string

const (
	SkillCybernetics SkillKey = "cybernetics"
	SkillStreetCred  SkillKey = "street_cred"
	SkillNetrunning  SkillKey = "netrunning"
	SkillCombat      SkillKey = "combat"
	SkillTech        SkillKey = "tech"
)

// AllSkills lists the skills in display order.
var AllSkills = []SkillKey{
	SkillCybernetics,
	SkillStreetCred,
	SkillNetrunning,
	SkillCombat,
	SkillTech,
}

// Valid reports whether the key names a known skill.
func (s SkillKey) Valid() bool {
	switch s {
	case SkillCybernetics, SkillStreetCred, SkillNetrunning, SkillCombat, SkillTech:
		return true
	}
	return false
}

// DisplayName returns the human-readable skill name.
func (s SkillKey) DisplayName() string {
	switch s {
	case SkillCybernetics:
		return "Cybernetics"
	case SkillStreetCred:
		return "Street Cred"
	case SkillNetrunning:
		return "Netrunning"
	case SkillCombat:
		return "Combat"
	case SkillTech:
		return "Tech"
	}
	return string(s)
}

// BackgroundKey identifies an entry of the background catalog.
type BackgroundKey string

const (
	BackgroundStreetKid BackgroundKey = "street_kid"
	BackgroundNomad     BackgroundKey = "nomad"
	BackgroundCorpo     BackgroundKey = "corpo"
	BackgroundNetrunner BackgroundKey = "netrunner"
	BackgroundTechie    BackgroundKey = "techie"
	BackgroundSolo      BackgroundKey = "solo"
)

// Background describes one origin story: its starting skill bonuses and
// starting credit amount, applied exactly once when character creation
// completes.
type Background struct {
	Key             BackgroundKey    `json:"key"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Bonuses         map[SkillKey]int `json:"bonuses"`
	StartingCredits int              `json:"starting_credits"`
}

// Backgrounds is the fixed catalog, keyed for lookup and listed in
// BackgroundOrder for stable display.
var Backgrounds = map[BackgroundKey]Background{
	BackgroundStreetKid: {
		Key:             BackgroundStreetKid,
		Name:            "Street Kid",
		Description:     "Born and raised on the mean streets. You know the underbelly of Night City like the back of your hand.",
		Bonuses:         map[SkillKey]int{SkillStreetCred: 5, SkillCombat: 2},
		StartingCredits: 300,
	},
	BackgroundNomad: {
		Key:             BackgroundNomad,
		Name:            "Nomad",
		Description:     "From the Badlands outside the city. You have survival skills and mechanical knowledge.",
		Bonuses:         map[SkillKey]int{SkillTech: 5, SkillCombat: 2},
		StartingCredits: 400,
	},
	BackgroundCorpo: {
		Key:             BackgroundCorpo,
		Name:            "Corporate",
		Description:     "Former corporate drone with inside knowledge of how the big companies operate.",
		Bonuses:         map[SkillKey]int{SkillNetrunning: 3, SkillStreetCred: 2, SkillCybernetics: 2},
		StartingCredits: 800,
	},
	BackgroundNetrunner: {
		Key:             BackgroundNetrunner,
		Name:            "Netrunner",
		Description:     "Skilled hacker who lives in cyberspace. The net is your domain.",
		Bonuses:         map[SkillKey]int{SkillNetrunning: 7},
		StartingCredits: 500,
	},
	BackgroundTechie: {
		Key:             BackgroundTechie,
		Name:            "Techie",
		Description:     "Master of machines and gadgets. You can fix, hack, or build almost anything.",
		Bonuses:         map[SkillKey]int{SkillTech: 6, SkillCybernetics: 1},
		StartingCredits: 600,
	},
	BackgroundSolo: {
		Key:             BackgroundSolo,
		Name:            "Solo",
		Description:     "Professional mercenary and gun-for-hire. Combat is your specialty.",
		Bonuses:         map[SkillKey]int{SkillCombat: 6, SkillCybernetics: 1},
		StartingCredits: 450,
	},
}

// BackgroundOrder fixes the catalog's display order.
var BackgroundOrder = []BackgroundKey{
	BackgroundStreetKid,
	BackgroundNomad,
	BackgroundCorpo,
	BackgroundNetrunner,
	BackgroundTechie,
	BackgroundSolo,
}

// LookupBackground returns the catalog entry for the key.
func LookupBackground(key BackgroundKey) (Background, bool) {
	bg, ok := Backgrounds[key]
	return bg, ok
}
