package resume

import (
	"fmt"
	"slices"
)

// SectionKind names one section of a Document.
type SectionKind string

const (
	KindBasics       SectionKind = "basics"
	KindSummary      SectionKind = "summary"
	KindExperience   SectionKind = "experience"
	KindEducation    SectionKind = "education"
	KindWebsites     SectionKind = "websites"
	KindProjects     SectionKind = "projects"
	KindCustom       SectionKind = "custom"
	KindSkills       SectionKind = "skills"
	KindAchievements SectionKind = "achievements"
	KindHobbies      SectionKind = "hobbies"
)

// Kinds lists every section kind in display order.
var Kinds = []SectionKind{
	KindBasics, KindSummary, KindExperience, KindEducation, KindWebsites,
	KindProjects, KindCustom, KindSkills, KindAchievements, KindHobbies,
}

// Identified reports whether entries of this kind carry identity tokens.
func (k SectionKind) Identified() bool {
	switch k {
	case KindExperience, KindEducation, KindWebsites, KindProjects, KindCustom:
		return true
	}
	return false
}

// Target is the edit target of a rewrite: a section, optionally narrowed to
// one entry of an identified collection. The zero Target means the whole
// document.
type Target struct {
	Kind SectionKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	ID   string      `json:"id,omitempty" yaml:"id,omitempty"`
}

// Whole reports whether the target is the entire document.
func (t Target) Whole() bool { return t.Kind == "" && t.ID == "" }

// Validate checks the target against doc.
func (t Target) Validate(doc Document) error {
	if t.Whole() {
		return nil
	}
	switch t.Kind {
	case KindBasics, KindSummary, KindSkills, KindAchievements, KindHobbies:
		if t.ID != "" {
			return fmt.Errorf("section %q has no entries to select", t.Kind)
		}
		return nil
	case KindExperience, KindEducation, KindWebsites, KindProjects, KindCustom:
		if t.ID != "" && !slices.Contains(doc.IDs(t.Kind), t.ID) {
			return fmt.Errorf("no %s entry with id %q", t.Kind, t.ID)
		}
		return nil
	default:
		return fmt.Errorf("unknown section kind %q", t.Kind)
	}
}

func (t Target) String() string {
	switch {
	case t.Whole():
		return "document"
	case t.ID != "":
		return string(t.Kind) + "/" + t.ID
	default:
		return string(t.Kind)
	}
}
