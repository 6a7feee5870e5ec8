package mapper

import (
	"encoding/json"

	"sahayak-be/internal/model"
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/scheme"
)

// SchemeMapper converts between the persisted scheme row (JSON columns) and
// the in-memory snapshot the cache and services work with.
type SchemeMapper struct{}

func NewSchemeMapper() *SchemeMapper {
	return &SchemeMapper{}
}

func (m *SchemeMapper) ToSnapshot(s *model.Scheme) (*scheme.Snapshot, error) {
	if s == nil {
		return nil, nil
	}

	snap := &scheme.Snapshot{
		ID:       s.Id,
		Code:     s.Code,
		Category: s.Category,
		Deadline: s.Deadline,
		Version:  s.Version,
	}

	if err := json.Unmarshal(s.Names, &snap.Name); err != nil {
		return nil, apperror.Wrapf(apperror.KindValidation, err, "scheme %s: names column", s.Id)
	}
	if err := json.Unmarshal(s.Descriptions, &snap.Description); err != nil {
		return nil, apperror.Wrapf(apperror.KindValidation, err, "scheme %s: descriptions column", s.Id)
	}
	if err := json.Unmarshal(s.Criteria, &snap.Criteria); err != nil {
		return nil, apperror.Wrapf(apperror.KindValidation, err, "scheme %s: criteria column", s.Id)
	}
	if err := json.Unmarshal(s.Steps, &snap.Steps); err != nil {
		return nil, apperror.Wrapf(apperror.KindValidation, err, "scheme %s: steps column", s.Id)
	}
	if len(s.Documents) > 0 {
		if err := json.Unmarshal(s.Documents, &snap.Documents); err != nil {
			return nil, apperror.Wrapf(apperror.KindValidation, err, "scheme %s: documents column", s.Id)
		}
	}
	return snap, nil
}

func (m *SchemeMapper) ToModel(s *scheme.Snapshot) (*model.Scheme, error) {
	if s == nil {
		return nil, nil
	}

	names, err := json.Marshal(s.Name)
	if err != nil {
		return nil, err
	}
	descriptions, err := json.Marshal(s.Description)
	if err != nil {
		return nil, err
	}
	criteria, err := json.Marshal(s.Criteria)
	if err != nil {
		return nil, err
	}
	steps, err := json.Marshal(s.Steps)
	if err != nil {
		return nil, err
	}
	documents, err := json.Marshal(s.Documents)
	if err != nil {
		return nil, err
	}

	return &model.Scheme{
		Id:           s.ID,
		Code:         s.Code,
		Category:     s.Category,
		Names:        names,
		Descriptions: descriptions,
		Criteria:     criteria,
		Steps:        steps,
		Documents:    documents,
		Deadline:     s.Deadline,
		Version:      s.Version,
	}, nil
}

func (m *SchemeMapper) ToSnapshots(schemes []*model.Scheme) ([]*scheme.Snapshot, error) {
	snaps := make([]*scheme.Snapshot, 0, len(schemes))
	for _, s := range schemes {
		snap, err := m.ToSnapshot(s)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
