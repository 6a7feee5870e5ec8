package implementation

import (
	"encoding/json"

	"gorm.io/datatypes"

	"sahayak-be/internal/model"
)

// schemeRowJSON serializes a full catalog row for the version history table.
func schemeRowJSON(m *model.Scheme) (datatypes.JSON, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalSchemeRow(payload datatypes.JSON, out *model.Scheme) error {
	return json.Unmarshal(payload, out)
}
