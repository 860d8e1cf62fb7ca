package models

// Setting keys. Stored as simple key/value rows; values are parsed by the
// reading service.
const (
	SettingPreferenceEditable = "course_preference_editable"
)

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
