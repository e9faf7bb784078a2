package rubric

import (
	"fmt"
	"sort"

	"github.com/okian/tally/internal/domain/model"
)

// Book maps each category to its rubric.
type Book map[model.Category]Rubric

// NewBook validates the rubrics and indexes them by category.
func NewBook(rubrics ...Rubric) (Book, error) {
	b := make(Book, len(rubrics))
	for _, r := range rubrics {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := b[r.Category]; dup {
			return nil, fmt.Errorf("%w: duplicate rubric for %q", ErrInvalidRubric, r.Category)
		}
		b[r.Category] = r
	}
	return b, nil
}

// Lookup returns the rubric for category or model.ErrUnknownCategory.
func (b Book) Lookup(category model.Category) (Rubric, error) {
	r, ok := b[category]
	if !ok {
		return Rubric{}, fmt.Errorf("%w: no rubric for %q", model.ErrUnknownCategory, category)
	}
	return r, nil
}

// Categories returns the categories covered by the book, sorted by name.
func (b Book) Categories() []model.Category {
	out := make([]model.Category, 0, len(b))
	for c := range b {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultBook returns the rubric book for the default event.
func DefaultBook() Book {
	b := make(Book)
	for _, r := range DefaultRubrics() {
		b[r.Category] = r
	}
	return b
}

// writing returns the form/content/ethics rubric shared by the straight
// writing categories.
func writing(category model.Category, form, content, ethics string) Rubric {
	return Rubric{
		Category: category,
		Criteria: []Criterion{
			{ID: "form", Label: "Form and Style", Description: form, MaxScore: 40},
			{ID: "content", Label: "Content", Description: content, MaxScore: 50},
			{ID: "ethics", Label: "Ethics", Description: ethics, MaxScore: 10},
		},
	}
}

// DefaultRubrics returns the rubrics of the default event in category order.
func DefaultRubrics() []Rubric {
	return []Rubric{
		writing(model.NewsWriting,
			"Technicalities, lead, organization (40%)",
			"Accuracy, relevance, depth (50%)",
			"Fairness and objectivity (10%)"),
		writing(model.EditorialWriting,
			"Technicalities, lead, organization (40%)",
			"Logical arguments, stance (50%)",
			"Constructive criticism (10%)"),
		writing(model.SportsWriting,
			"Action-packed lead, terminology (40%)",
			"Game highlights, quotes (50%)",
			"Impartiality (10%)"),
		writing(model.SciTechWriting,
			"Clarity, simple language (40%)",
			"Scientific accuracy, relevance (50%)",
			"Objectivity (10%)"),
		{
			Category: model.FeatureWriting,
			Criteria: []Criterion{
				{ID: "content", Label: "Creative Content/Angle", Description: "Human interest, unique angle (40%)", MaxScore: 40},
				{ID: "style", Label: "Literary Style", Description: "Word choice, flow, impact (60%)", MaxScore: 60},
			},
		},
		{
			Category: model.ColumnWriting,
			Criteria: []Criterion{
				{ID: "voice", Label: "Personality/Voice", Description: "Authorial tone and style (30%)", MaxScore: 30},
				{ID: "insight", Label: "Depth of Insight", Description: "Analysis and logic (50%)", MaxScore: 50},
				{ID: "impact", Label: "Impact", Description: "Reader engagement (20%)", MaxScore: 20},
			},
		},
		{
			Category: model.RadioBroadcast,
			Criteria: []Criterion{
				{ID: "anchor", Label: "Anchor Performance", Description: "Diction and delivery (20%)", MaxScore: 20},
				{ID: "presenter", Label: "News Presenter", Description: "Clarity and pace (20%)", MaxScore: 20},
				{ID: "technical", Label: "Technical Application", Description: "SFX/Mix quality (30%)", MaxScore: 30},
				{ID: "script", Label: "Script Quality", Description: "Structure and content (30%)", MaxScore: 30},
			},
		},
		{
			Category: model.TVBroadcast,
			Criteria: []Criterion{
				{ID: "anchor", Label: "Anchor Presence", Description: "Visual and vocal delivery (20%)", MaxScore: 20},
				{ID: "reporter", Label: "Reporter Performance", Description: "On-cam delivery (20%)", MaxScore: 20},
				{ID: "production", Label: "Production Value", Description: "Editing and graphics (30%)", MaxScore: 30},
				{ID: "content", Label: "Broadcast Content", Description: "Flow and depth (30%)", MaxScore: 30},
			},
		},
	}
}
