package models

// Global setting keys. These are read by the ROI computation and refreshed
// by background jobs; the financial subsystem never writes them.
const (
	SettingKeyMonthlyHours       = "monthly_hours"
	SettingKeyUFRate             = "uf_rate"
	SettingKeyDefaultMonthlyCost = "default_monthly_cost"
)

// GlobalSetting is one key/value configuration row
type GlobalSetting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}
