package resume

import "slices"

// Clone returns a structurally new Document. No slice, including the nested
// string slices of entries, is shared with the receiver.
func (d Document) Clone() Document {
	out := d
	out.Experience = cloneEntries(d.Experience, func(e Experience) Experience {
		e.Responsibilities = cloneStrings(e.Responsibilities)
		return e
	})
	out.Education = cloneEntries(d.Education, nil)
	out.Websites = cloneEntries(d.Websites, nil)
	out.Projects = cloneEntries(d.Projects, func(p Project) Project {
		p.Technologies = cloneStrings(p.Technologies)
		p.Highlights = cloneStrings(p.Highlights)
		return p
	})
	out.CustomSections = cloneEntries(d.CustomSections, func(s CustomSection) CustomSection {
		s.Items = cloneStrings(s.Items)
		return s
	})
	out.Skills = cloneStrings(d.Skills)
	out.Achievements = cloneStrings(d.Achievements)
	out.Hobbies = cloneStrings(d.Hobbies)
	return out
}

func cloneEntries[E any](in []E, deep func(E) E) []E {
	if in == nil {
		return nil
	}
	out := make([]E, len(in))
	for i, e := range in {
		if deep != nil {
			e = deep(e)
		}
		out[i] = e
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

// Equal reports full structural equality. A nil slice equals an empty one.
func (d Document) Equal(o Document) bool {
	if d.Name != o.Name || d.Contact != o.Contact || d.Summary != o.Summary {
		return false
	}
	return slices.EqualFunc(d.Experience, o.Experience, experienceEqual) &&
		slices.Equal(d.Education, o.Education) &&
		slices.Equal(d.Websites, o.Websites) &&
		slices.EqualFunc(d.Projects, o.Projects, projectEqual) &&
		slices.EqualFunc(d.CustomSections, o.CustomSections, customEqual) &&
		slices.Equal(d.Skills, o.Skills) &&
		slices.Equal(d.Achievements, o.Achievements) &&
		slices.Equal(d.Hobbies, o.Hobbies)
}

func experienceEqual(a, b Experience) bool {
	return a.ID == b.ID && a.Title == b.Title && a.Company == b.Company &&
		a.Location == b.Location && a.StartDate == b.StartDate && a.EndDate == b.EndDate &&
		slices.Equal(a.Responsibilities, b.Responsibilities)
}

func projectEqual(a, b Project) bool {
	return a.ID == b.ID && a.Name == b.Name && a.URL == b.URL && a.Description == b.Description &&
		slices.Equal(a.Technologies, b.Technologies) && slices.Equal(a.Highlights, b.Highlights)
}

func customEqual(a, b CustomSection) bool {
	return a.ID == b.ID && a.Title == b.Title && a.Content == b.Content && slices.Equal(a.Items, b.Items)
}
