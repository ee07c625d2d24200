package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/logger"
)

var (
	ErrEmptyInput  = errors.New("nothing to process")
	ErrUnparseable = errors.New("LLM response is not a resume document")
)

// Rewriter is the text-understanding collaborator seen by the editor.
// Results are unvalidated; callers validate before committing.
type Rewriter interface {
	Rewrite(ctx context.Context, base resume.Document, instruction string, target resume.Target) (resume.Document, error)
	Structure(ctx context.Context, text string) (resume.Document, error)
}

// LLMRewriter implements Rewriter on top of a Generator.
type LLMRewriter struct {
	gen     Generator
	clean   *Cleaner
	timeout time.Duration
}

func NewLLMRewriter(gen Generator, timeout time.Duration) *LLMRewriter {
	return &LLMRewriter{gen: gen, clean: NewCleaner(), timeout: timeout}
}

const systemPrompt = `You are a resume writing assistant. You always answer with a single JSON object that follows the resume schema you are given, and nothing else.`

const schemaHint = `Resume schema:
{
  "name": string,
  "contact": {"email": string, "phone": string, "location": string, "headline": string},
  "summary": string,
  "experience": [{"id": string, "title": string, "company": string, "location": string, "startDate": string, "endDate": string, "responsibilities": [string]}],
  "education": [{"id": string, "institution": string, "degree": string, "field": string, "startDate": string, "endDate": string, "grade": string}],
  "websites": [{"id": string, "label": string, "url": string}],
  "projects": [{"id": string, "name": string, "url": string, "description": string, "technologies": [string], "highlights": [string]}],
  "customSections": [{"id": string, "title": string, "content": string, "items": [string]}],
  "skills": [string],
  "achievements": [string],
  "hobbies": [string]
}`

func (r *LLMRewriter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

// Rewrite asks the model to apply instruction to base. Only the targeted part
// of the answer is used; the rest of base is carried over unchanged.
func (r *LLMRewriter) Rewrite(ctx context.Context, base resume.Document, instruction string, target resume.Target) (resume.Document, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return resume.Document{}, ErrEmptyInput
	}
	current, err := json.MarshalIndent(base, "", "  ")
	if err != nil {
		return resume.Document{}, fmt.Errorf("marshal base document: %w", err)
	}

	var b strings.Builder
	b.WriteString(schemaHint)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- If an item has an id field, return it with the exact same id.\n")
	b.WriteString("- New items must not have an id.\n")
	b.WriteString("- Leave out items that should be removed.\n")
	if target.Whole() {
		b.WriteString("- You may change any part of the resume.\n")
	} else {
		fmt.Fprintf(&b, "- Only change the %s part of the resume; return everything else unchanged.\n", target)
	}
	fmt.Fprintf(&b, "\nInstruction:\n%s\n\nCurrent resume:\n%s\n\nReturn the complete updated resume as JSON.", instruction, current)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	raw, err := r.gen.Generate(ctx, systemPrompt, b.String())
	if err != nil {
		return resume.Document{}, fmt.Errorf("resume rewrite failed: %w", err)
	}
	logger.With("target", target.String(), "duration_ms", time.Since(start).Milliseconds()).Infow("received rewrite", "response_length", len(raw))

	doc, err := r.decode(raw)
	if err != nil {
		return resume.Document{}, err
	}
	return Scope(base, doc, target), nil
}

// Structure turns pasted resume text or HTML into a Document.
func (r *LLMRewriter) Structure(ctx context.Context, text string) (resume.Document, error) {
	cleaned := r.clean.CleanHTML(text)
	if cleaned == "" {
		return resume.Document{}, ErrEmptyInput
	}
	prompt := schemaHint + "\n\nExtract the resume below into the schema. Do not invent facts. Omit every id field.\n\nResume:\n" + cleaned

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	raw, err := r.gen.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return resume.Document{}, fmt.Errorf("resume extraction failed: %w", err)
	}
	return r.decode(raw)
}

func (r *LLMRewriter) decode(raw string) (resume.Document, error) {
	body := r.clean.CleanLLMResponse(raw)
	var doc resume.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		logger.Warnf("could not decode LLM response (%d bytes): %v", len(body), err)
		return resume.Document{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return doc, nil
}

// Scope limits a returned document to target: the targeted section (or
// entry) comes from returned, everything else from base. A whole-document
// target returns returned unchanged.
func Scope(base, returned resume.Document, target resume.Target) resume.Document {
	if target.Whole() {
		return returned
	}
	out := base.Clone()
	r := returned.Clone()
	switch target.Kind {
	case resume.KindBasics:
		out.Name = r.Name
		out.Contact = r.Contact
	case resume.KindSummary:
		out.Summary = r.Summary
	case resume.KindExperience:
		out.Experience = scopeEntries(out.Experience, r.Experience, target.ID)
	case resume.KindEducation:
		out.Education = scopeEntries(out.Education, r.Education, target.ID)
	case resume.KindWebsites:
		out.Websites = scopeEntries(out.Websites, r.Websites, target.ID)
	case resume.KindProjects:
		out.Projects = scopeEntries(out.Projects, r.Projects, target.ID)
	case resume.KindCustom:
		out.CustomSections = scopeEntries(out.CustomSections, r.CustomSections, target.ID)
	case resume.KindSkills:
		out.Skills = r.Skills
	case resume.KindAchievements:
		out.Achievements = r.Achievements
	case resume.KindHobbies:
		out.Hobbies = r.Hobbies
	default:
		return returned
	}
	return out
}

type identified[E any] interface {
	*E
	resume.Identified
}

// scopeEntries replaces the entry with the given id in base by the returned
// entry carrying the same id. Without an id, or when the model dropped or
// renamed the entry, the returned collection replaces base.
func scopeEntries[E any, P identified[E]](base, returned []E, id string) []E {
	if id == "" {
		return returned
	}
	var replacement *E
	for i := range returned {
		if P(&returned[i]).EntryID() == id {
			replacement = &returned[i]
			break
		}
	}
	if replacement == nil {
		return returned
	}
	for i := range base {
		if P(&base[i]).EntryID() == id {
			base[i] = *replacement
			return base
		}
	}
	return returned
}
