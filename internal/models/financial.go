package models

import "time"

// UserCostRate is the monthly cost basis for one user. Only one rate per
// user is active at a time; superseded rates are deactivated, never
// deleted, so past time entries keep their historical cost basis.
type UserCostRate struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	MonthlyCost   float64   `json:"monthly_cost"`
	HourlyRate    float64   `json:"hourly_rate"`
	EffectiveFrom string    `json:"effective_from"`
	EffectiveTo   *string   `json:"effective_to,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateCostRateRequest is the request body for setting a user's cost rate
type CreateCostRateRequest struct {
	UserID        int     `json:"user_id"`
	MonthlyCost   float64 `json:"monthly_cost"`
	EffectiveFrom string  `json:"effective_from"`
}

// ProjectFinancials is the persisted snapshot of the last ROI computation.
// It is a derived cache for list views, not a source of truth; the ROI
// computation is authoritative and last-writer-wins on this row.
type ProjectFinancials struct {
	ID            int       `json:"id"`
	ProjectID     int       `json:"project_id"`
	SalePrice     float64   `json:"sale_price"`
	PlannedCost   float64   `json:"planned_cost"`
	ActualCost    float64   `json:"actual_cost"`
	PlannedProfit float64   `json:"planned_profit"`
	ActualProfit  float64   `json:"actual_profit"`
	PlannedROI    float64   `json:"planned_roi"`
	ActualROI     float64   `json:"actual_roi"`
	BudgetedHours float64   `json:"budgeted_hours"`
	ActualHours   float64   `json:"actual_hours"`
	DelayImpact   float64   `json:"delay_impact"`
	LostProfit    float64   `json:"lost_profit"`
	ComputedAt    time.Time `json:"computed_at"`
}

// UserCostBreakdown is the per-user slice of a project's blended cost
type UserCostBreakdown struct {
	UserID               int     `json:"user_id"`
	FullName             string  `json:"full_name"`
	MonthlyCost          float64 `json:"monthly_cost"`
	HourlyCost           float64 `json:"hourly_cost"`
	AllocationPercentage float64 `json:"allocation_percentage"`
	AdjustedHourlyCost   float64 `json:"adjusted_hourly_cost"`
	UsedDefaultRate      bool    `json:"used_default_rate"`
}

// Alert severity constants
const (
	AlertCritical = "critical"
	AlertWarning  = "warning"
	AlertInfo     = "info"
	AlertSuccess  = "success"
)

// ROIAlert flags a noteworthy financial condition on a computation
type ROIAlert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ROIResult carries planned and real variants of every financial metric for
// one project, plus the inputs that produced them.
type ROIResult struct {
	ProjectID         int                 `json:"project_id"`
	BudgetedHours     float64             `json:"budgeted_hours"`
	ClientDelayHours  float64             `json:"client_delay_hours"`
	RealHours         float64             `json:"real_hours"`
	BlendedHourlyCost float64             `json:"blended_hourly_cost"`
	SalePrice         float64             `json:"sale_price"`
	PlannedCost       float64             `json:"planned_cost"`
	RealCost          float64             `json:"real_cost"`
	PlannedProfit     float64             `json:"planned_profit"`
	RealProfit        float64             `json:"real_profit"`
	PlannedROI        float64             `json:"planned_roi"`
	RealROI           float64             `json:"real_roi"`
	DelayImpact       float64             `json:"delay_impact"`
	LostProfit        float64             `json:"lost_profit"`
	UFRate            float64             `json:"uf_rate"`
	CostBreakdown     []UserCostBreakdown `json:"cost_breakdown"`
	Alerts            []ROIAlert          `json:"alerts"`
	CacheWarning      bool                `json:"cache_warning,omitempty"`
	ComputedAt        time.Time           `json:"computed_at"`
}
