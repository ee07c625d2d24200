// Package reconcile aligns an externally rewritten resume with the document it
// was produced from, so entries that existed before keep their identity tokens.
package reconcile

import (
	"github.com/resumeforge/resumeforge/backend/go-services/internal/identity"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
)

// CollectionReport counts what happened to one identified collection.
type CollectionReport struct {
	Preserved  int      `json:"preserved" yaml:"preserved"`
	Minted     int      `json:"minted" yaml:"minted"`
	Dropped    int      `json:"dropped" yaml:"dropped"`
	DroppedIDs []string `json:"droppedIds,omitempty" yaml:"droppedIds,omitempty"`
}

// Report holds one CollectionReport per identified collection.
type Report map[resume.SectionKind]CollectionReport

// Changed reports whether any token was minted or dropped.
func (r Report) Changed() bool {
	for _, c := range r {
		if c.Minted > 0 || c.Dropped > 0 {
			return true
		}
	}
	return false
}

// Total sums all collections.
func (r Report) Total() CollectionReport {
	var t CollectionReport
	for _, c := range r {
		t.Preserved += c.Preserved
		t.Minted += c.Minted
		t.Dropped += c.Dropped
		t.DroppedIDs = append(t.DroppedIDs, c.DroppedIDs...)
	}
	return t
}

type Result struct {
	Document resume.Document `json:"document" yaml:"document"`
	Report   Report          `json:"report" yaml:"report"`
}

// Reconciler mints fresh tokens through Tokens; a nil Tokens uses UUIDs.
type Reconciler struct {
	Tokens identity.Generator
}

func New(tokens identity.Generator) *Reconciler {
	return &Reconciler{Tokens: tokens}
}

func (r *Reconciler) tokens() identity.Generator {
	if r == nil || r.Tokens == nil {
		return identity.UUIDGenerator{}
	}
	return r.Tokens
}

// Reconcile produces the document to commit for an AI rewrite of previous.
// The returned document is authoritative for content, membership and order;
// previous only decides which identity tokens survive. Neither input is
// modified.
func (r *Reconciler) Reconcile(previous, returned resume.Document) Result {
	out := returned.Clone()
	gen := r.tokens()
	rep := Report{}
	out.Experience, rep[resume.KindExperience] = collection(previous.Experience, out.Experience, gen)
	out.Education, rep[resume.KindEducation] = collection(previous.Education, out.Education, gen)
	out.Websites, rep[resume.KindWebsites] = collection(previous.Websites, out.Websites, gen)
	out.Projects, rep[resume.KindProjects] = collection(previous.Projects, out.Projects, gen)
	out.CustomSections, rep[resume.KindCustom] = collection(previous.CustomSections, out.CustomSections, gen)
	return Result{Document: out, Report: rep}
}

// AssignMissing gives every entry without a token, and every later
// occurrence of a duplicated token, a fresh token. Nothing is dropped.
func (r *Reconciler) AssignMissing(doc resume.Document) Result {
	out := doc.Clone()
	gen := r.tokens()
	rep := Report{}
	out.Experience, rep[resume.KindExperience] = assign(out.Experience, gen)
	out.Education, rep[resume.KindEducation] = assign(out.Education, gen)
	out.Websites, rep[resume.KindWebsites] = assign(out.Websites, gen)
	out.Projects, rep[resume.KindProjects] = assign(out.Projects, gen)
	out.CustomSections, rep[resume.KindCustom] = assign(out.CustomSections, gen)
	return Result{Document: out, Report: rep}
}

type entry[E any] interface {
	*E
	resume.Identified
}

// collection reconciles one identified collection. next is owned by the
// caller's result and is rewritten in place.
func collection[E any, P entry[E]](prev, next []E, gen identity.Generator) ([]E, CollectionReport) {
	var rep CollectionReport
	known := make(map[string]struct{}, len(prev))
	reserved := make(map[string]struct{}, len(prev)+len(next))
	for i := range prev {
		id := P(&prev[i]).EntryID()
		if id == "" {
			continue
		}
		known[id] = struct{}{}
		reserved[id] = struct{}{}
	}

	used := make(map[string]struct{}, len(next))
	for i := range next {
		e := P(&next[i])
		id := e.EntryID()
		_, isKnown := known[id]
		_, isUsed := used[id]
		if id != "" && isKnown && !isUsed {
			used[id] = struct{}{}
			rep.Preserved++
			continue
		}
		fresh := identity.Unique(gen, reserved)
		e.SetEntryID(fresh)
		used[fresh] = struct{}{}
		rep.Minted++
	}

	for i := range prev {
		id := P(&prev[i]).EntryID()
		if id == "" {
			continue
		}
		if _, kept := used[id]; !kept {
			rep.Dropped++
			rep.DroppedIDs = append(rep.DroppedIDs, id)
		}
	}
	return next, rep
}

func assign[E any, P entry[E]](entries []E, gen identity.Generator) ([]E, CollectionReport) {
	var rep CollectionReport
	reserved := make(map[string]struct{}, len(entries))
	for i := range entries {
		if id := P(&entries[i]).EntryID(); id != "" {
			reserved[id] = struct{}{}
		}
	}
	used := make(map[string]struct{}, len(entries))
	for i := range entries {
		e := P(&entries[i])
		id := e.EntryID()
		if _, dup := used[id]; id != "" && !dup {
			used[id] = struct{}{}
			rep.Preserved++
			continue
		}
		fresh := identity.Unique(gen, reserved)
		e.SetEntryID(fresh)
		used[fresh] = struct{}{}
		rep.Minted++
	}
	return entries, rep
}
