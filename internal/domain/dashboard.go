package domain

// FilterCriteria narrows a record collection. Zero values disable a predicate,
// except Session which always applies when it is restricted.
type FilterCriteria struct {
	Session     Session
	Months      []string
	Stores      []string
	Year        int
	PeriodStart string
	PeriodEnd   string
}

// Adjustment toggles applied to EBITDA and net profit of a single record.
type Adjustment struct {
	ExcludeSalesOfServices bool `json:"excludeSalesOfServices"`
	ExcludeBlueExpenses    bool `json:"excludeBlueExpenses"`
	ExcludePepeExpenses    bool `json:"excludePepeExpenses"`
}

func (a Adjustment) IsZero() bool {
	return !a.ExcludeSalesOfServices && !a.ExcludeBlueExpenses && !a.ExcludePepeExpenses
}

// KPIBundle is the dashboard summary over a filtered record set.
type KPIBundle struct {
	Sales              float64 `json:"sales"`
	SalesOfServices    float64 `json:"salesOfServices"`
	TotalRevenue       float64 `json:"totalRevenue"`
	Purchases          float64 `json:"purchases"`
	Payroll            float64 `json:"payroll"`
	Utilities          float64 `json:"utilities"`
	OtherExpenses      float64 `json:"otherExpenses"`
	Rent               float64 `json:"rent"`
	Fees               float64 `json:"fees"`
	EBITDA             float64 `json:"ebitda"`
	Severance          float64 `json:"severance"`
	ContributionMargin float64 `json:"contributionMargin"`

	FoodCostPercent           string `json:"foodCostPercent"`
	PayrollPercent            string `json:"payrollPercent"`
	UtilitiesPercent          string `json:"utilitiesPercent"`
	OtherExpensesPercent      string `json:"otherExpensesPercent"`
	RentPercent               string `json:"rentPercent"`
	FeesPercent               string `json:"feesPercent"`
	EBITDAPercent             string `json:"ebitdaPercent"`
	ContributionMarginPercent string `json:"contributionMarginPercent"`
}

// VarianceRow compares one field between two records.
type VarianceRow struct {
	Field           Field   `json:"field"`
	A               float64 `json:"actualOrA"`
	B               float64 `json:"budgetOrB"`
	Variance        float64 `json:"variance"`
	VariancePercent float64 `json:"variancePercent"`
}

// Comparison is a variance table between two labelled records.
type Comparison struct {
	Mode   string        `json:"mode"`
	Month  string        `json:"month"`
	LabelA string        `json:"labelA"`
	LabelB string        `json:"labelB"`
	Rows   []VarianceRow `json:"rows"`
}

// YTDResult holds cumulative sums up to a target month.
type YTDResult struct {
	Store       string            `json:"store"`
	TargetMonth string            `json:"targetMonth"`
	Months      []string          `json:"months"`
	Actual      map[Field]float64 `json:"actual"`
	Budget      map[Field]float64 `json:"budget,omitempty"`
	Variance    []VarianceRow     `json:"variance,omitempty"`
}

// Options lists the values available to the month/store/year selectors.
type Options struct {
	Months []string `json:"months"`
	Stores []string `json:"stores"`
	Years  []int    `json:"years"`
}
