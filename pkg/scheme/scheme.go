package scheme

import (
	"time"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/eligibility"
	"sahayak-be/pkg/i18n"
)

// Snapshot is an immutable, fully localized scheme record. Cached and handed
// out by value-deep copies; mutation only happens through the repository's
// update path, which bumps Version.
type Snapshot struct {
	ID          string               `json:"id"`
	Code        string               `json:"code"`
	Category    string               `json:"category"`
	Name        i18n.Text            `json:"name"`
	Description i18n.Text            `json:"description"`
	Criteria    eligibility.Criteria `json:"criteria"`
	Steps       []i18n.Text          `json:"steps"`
	Documents   []i18n.Text          `json:"documents"`
	Deadline    *time.Time           `json:"deadline,omitempty"`
	Version     int                  `json:"version"`
}

// Validate fails fast on incomplete language maps or broken criteria, so a
// partial record is rejected before persistence rather than discovered at
// render time.
func (s *Snapshot) Validate() error {
	if s.Code == "" {
		return apperror.New(apperror.KindValidation, "scheme code is required")
	}
	if s.Category == "" {
		return apperror.New(apperror.KindValidation, "scheme category is required")
	}
	if err := s.Name.Validate(); err != nil {
		return apperror.Wrap(apperror.KindValidation, err, "scheme name")
	}
	if err := s.Description.Validate(); err != nil {
		return apperror.Wrap(apperror.KindValidation, err, "scheme description")
	}
	if err := s.Criteria.Validate(); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return apperror.New(apperror.KindValidation, "scheme needs at least one application step")
	}
	for i, step := range s.Steps {
		if err := step.Validate(); err != nil {
			return apperror.Wrapf(apperror.KindValidation, err, "application step %d", i+1)
		}
	}
	for i, doc := range s.Documents {
		if err := doc.Validate(); err != nil {
			return apperror.Wrapf(apperror.KindValidation, err, "required document %d", i+1)
		}
	}
	return nil
}

// Clone deep-copies the snapshot so cached records stay immutable.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Name = cloneText(s.Name)
	out.Description = cloneText(s.Description)
	out.Criteria = append(eligibility.Criteria(nil), s.Criteria...)
	for i := range out.Criteria {
		out.Criteria[i].Predicate.OneOf = append([]string(nil), s.Criteria[i].Predicate.OneOf...)
		if s.Criteria[i].Predicate.Min != nil {
			v := *s.Criteria[i].Predicate.Min
			out.Criteria[i].Predicate.Min = &v
		}
		if s.Criteria[i].Predicate.Max != nil {
			v := *s.Criteria[i].Predicate.Max
			out.Criteria[i].Predicate.Max = &v
		}
	}
	out.Steps = cloneTexts(s.Steps)
	out.Documents = cloneTexts(s.Documents)
	if s.Deadline != nil {
		d := *s.Deadline
		out.Deadline = &d
	}
	return &out
}

// Candidate converts the snapshot into the eligibility engine's view for the
// alternative-scheme search.
func (s *Snapshot) Candidate() eligibility.Candidate {
	return eligibility.Candidate{
		ID:       s.ID,
		Category: s.Category,
		Version:  s.Version,
		Criteria: s.Criteria,
	}
}

// Projection is a Snapshot rendered in one language for responses.
type Projection struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Category    string     `json:"category"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Steps       []string   `json:"steps"`
	Documents   []string   `json:"documents"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Version     int        `json:"version"`
}

// View projects the snapshot into lang.
func (s *Snapshot) View(lang i18n.Language) Projection {
	p := Projection{
		ID:          s.ID,
		Code:        s.Code,
		Category:    s.Category,
		Name:        s.Name.In(lang),
		Description: s.Description.In(lang),
		Deadline:    s.Deadline,
		Version:     s.Version,
	}
	for _, step := range s.Steps {
		p.Steps = append(p.Steps, step.In(lang))
	}
	for _, doc := range s.Documents {
		p.Documents = append(p.Documents, doc.In(lang))
	}
	return p
}

func cloneText(t i18n.Text) i18n.Text {
	out := make(i18n.Text, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func cloneTexts(ts []i18n.Text) []i18n.Text {
	out := make([]i18n.Text, len(ts))
	for i, t := range ts {
		out[i] = cloneText(t)
	}
	return out
}
