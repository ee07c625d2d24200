package resume

// Document is the full structured resume record held by an editing session.
// Identified collections (experience, education, websites, projects, custom
// sections) carry per-entry identity tokens; skills, achievements and hobbies
// are plain strings and are replaced wholesale on edit.
type Document struct {
	Name           string          `json:"name" yaml:"name" validate:"max=200"`
	Contact        Contact         `json:"contact" yaml:"contact"`
	Summary        string          `json:"summary" yaml:"summary" validate:"max=4000"`
	Experience     []Experience    `json:"experience" yaml:"experience" validate:"dive"`
	Education      []Education     `json:"education" yaml:"education" validate:"dive"`
	Websites       []Website       `json:"websites" yaml:"websites" validate:"dive"`
	Projects       []Project       `json:"projects" yaml:"projects" validate:"dive"`
	CustomSections []CustomSection `json:"customSections" yaml:"customSections" validate:"dive"`
	Skills         []string        `json:"skills" yaml:"skills" validate:"dive,max=200"`
	Achievements   []string        `json:"achievements" yaml:"achievements" validate:"dive,max=1000"`
	Hobbies        []string        `json:"hobbies" yaml:"hobbies" validate:"dive,max=200"`
}

type Contact struct {
	Email    string `json:"email" yaml:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" yaml:"phone" validate:"max=50"`
	Location string `json:"location" yaml:"location" validate:"max=200"`
	Headline string `json:"headline" yaml:"headline" validate:"max=300"`
}

type Experience struct {
	ID               string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title            string   `json:"title" yaml:"title" validate:"required,max=200"`
	Company          string   `json:"company" yaml:"company" validate:"max=200"`
	Location         string   `json:"location" yaml:"location" validate:"max=200"`
	StartDate        string   `json:"startDate" yaml:"startDate" validate:"max=50"`
	EndDate          string   `json:"endDate" yaml:"endDate" validate:"max=50"`
	Responsibilities []string `json:"responsibilities" yaml:"responsibilities" validate:"dive,max=1000"`
}

type Education struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Institution string `json:"institution" yaml:"institution" validate:"required,max=200"`
	Degree      string `json:"degree" yaml:"degree" validate:"max=200"`
	Field       string `json:"field" yaml:"field" validate:"max=200"`
	StartDate   string `json:"startDate" yaml:"startDate" validate:"max=50"`
	EndDate     string `json:"endDate" yaml:"endDate" validate:"max=50"`
	Grade       string `json:"grade" yaml:"grade" validate:"max=50"`
}

type Website struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Label string `json:"label" yaml:"label" validate:"max=100"`
	URL   string `json:"url" yaml:"url" validate:"required,url"`
}

type Project struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string   `json:"name" yaml:"name" validate:"required,max=200"`
	URL          string   `json:"url" yaml:"url" validate:"omitempty,url"`
	Description  string   `json:"description" yaml:"description" validate:"max=2000"`
	Technologies []string `json:"technologies" yaml:"technologies" validate:"dive,max=100"`
	Highlights   []string `json:"highlights" yaml:"highlights" validate:"dive,max=1000"`
}

// CustomSection is a free-form section with a title and plain-string items.
type CustomSection struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title   string   `json:"title" yaml:"title" validate:"required,max=200"`
	Content string   `json:"content" yaml:"content" validate:"max=4000"`
	Items   []string `json:"items" yaml:"items" validate:"dive,max=1000"`
}

// Identified is implemented by pointers to every identified entry type.
type Identified interface {
	EntryID() string
	SetEntryID(id string)
}

func (e *Experience) EntryID() string { return e.ID }
func (e *Experience) SetEntryID(id string) { e.ID = id }
func (e *Education) EntryID() string { return e.ID }
func (e *Education) SetEntryID(id string) { e.ID = id }
func (w *Website) EntryID() string { return w.ID }
func (w *Website) SetEntryID(id string) { w.ID = id }
func (p *Project) EntryID() string { return p.ID }
func (p *Project) SetEntryID(id string) { p.ID = id }
func (s *CustomSection) EntryID() string { return s.ID }
func (s *CustomSection) SetEntryID(id string) { s.ID = id }

// Blank returns the empty template a new session starts from.
func Blank() Document {
	return Document{
		Experience:     []Experience{},
		Education:      []Education{},
		Websites:       []Website{},
		Projects:       []Project{},
		CustomSections: []CustomSection{},
		Skills:         []string{},
		Achievements:   []string{},
		Hobbies:        []string{},
	}
}

// IDs returns the identity tokens of one identified collection in order.
// Unknown or non-identified kinds return nil.
func (d Document) IDs(kind SectionKind) []string {
	switch kind {
	case KindExperience:
		return collectIDs(d.Experience)
	case KindEducation:
		return collectIDs(d.Education)
	case KindWebsites:
		return collectIDs(d.Websites)
	case KindProjects:
		return collectIDs(d.Projects)
	case KindCustom:
		return collectIDs(d.CustomSections)
	}
	return nil
}

func collectIDs[E any, P interface {
	*E
	Identified
}](entries []E) []string {
	out := make([]string, 0, len(entries))
	for i := range entries {
		out = append(out, P(&entries[i]).EntryID())
	}
	return out
}
