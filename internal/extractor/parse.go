package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseFields decodes raw model output into Fields. Known code fences are
// stripped first; absent or blank fields become NoData.
func ParseFields(raw string) (Fields, error) {
	cleaned := stripCodeFences(raw)
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if obj == nil {
		return Fields{}, fmt.Errorf("%w: response is not an object", ErrMalformedResponse)
	}
	return Fields{
		UnitID:           stringField(obj, "numer_lokalu_budynku"),
		Defect:           stringField(obj, "rodzaj_usterki"),
		ResponsibleParty: stringField(obj, "podmiot_odpowiedzialny"),
	}, nil
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return NoData
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64, bool:
		s = fmt.Sprint(t)
	default:
		return NoData
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return NoData
	}
	return s
}

func isPresent(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != NoData
}
