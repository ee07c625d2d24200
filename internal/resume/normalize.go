package resume

import "strings"

// Normalize trims scalar text and drops blank strings from plain-string
// collections. Identity tokens are trimmed too; a token that is only
// whitespace becomes empty, i.e. "not yet assigned".
func (d Document) Normalize() Document {
	out := d.Clone()
	out.Name = strings.TrimSpace(out.Name)
	out.Summary = strings.TrimSpace(out.Summary)
	out.Contact.Email = strings.TrimSpace(out.Contact.Email)
	out.Contact.Phone = strings.TrimSpace(out.Contact.Phone)
	out.Contact.Location = strings.TrimSpace(out.Contact.Location)
	out.Contact.Headline = strings.TrimSpace(out.Contact.Headline)
	for i := range out.Experience {
		e := &out.Experience[i]
		e.ID = strings.TrimSpace(e.ID)
		e.Title = strings.TrimSpace(e.Title)
		e.Company = strings.TrimSpace(e.Company)
		e.Location = strings.TrimSpace(e.Location)
		e.Responsibilities = compact(e.Responsibilities)
	}
	for i := range out.Education {
		e := &out.Education[i]
		e.ID = strings.TrimSpace(e.ID)
		e.Institution = strings.TrimSpace(e.Institution)
		e.Degree = strings.TrimSpace(e.Degree)
		e.Field = strings.TrimSpace(e.Field)
	}
	for i := range out.Websites {
		w := &out.Websites[i]
		w.ID = strings.TrimSpace(w.ID)
		w.Label = strings.TrimSpace(w.Label)
		w.URL = strings.TrimSpace(w.URL)
	}
	for i := range out.Projects {
		p := &out.Projects[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.URL = strings.TrimSpace(p.URL)
		p.Description = strings.TrimSpace(p.Description)
		p.Technologies = compact(p.Technologies)
		p.Highlights = compact(p.Highlights)
	}
	for i := range out.CustomSections {
		s := &out.CustomSections[i]
		s.ID = strings.TrimSpace(s.ID)
		s.Title = strings.TrimSpace(s.Title)
		s.Content = strings.TrimSpace(s.Content)
		s.Items = compact(s.Items)
	}
	out.Skills = compact(out.Skills)
	out.Achievements = compact(out.Achievements)
	out.Hobbies = compact(out.Hobbies)
	return out
}

func compact(in []string) []string {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
