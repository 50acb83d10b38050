package model

// SettingsGroup is a named key/value group of site settings
// (contacts, social links, working hours and so on).
type SettingsGroup struct {
	Group  string            `json:"group"`
	Values map[string]string `json:"values"`
}
