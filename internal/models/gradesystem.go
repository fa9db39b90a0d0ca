package models

// GradeSystemType classifies how a grade system expresses values.
type GradeSystemType string

const (
	SystemTypeNumeric  GradeSystemType = "numeric"
	SystemTypeLetter   GradeSystemType = "letter"
	SystemTypePassFail GradeSystemType = "pass_fail"
	SystemTypeCustom   GradeSystemType = "custom"
)

// RoundingMethod controls how computed values are rounded within a system.
type RoundingMethod string

const (
	RoundingNone  RoundingMethod = "none"
	RoundingCeil  RoundingMethod = "ceil"
	RoundingFloor RoundingMethod = "floor"
	RoundingHalf  RoundingMethod = "round"
)

// GradeSystem defines a grading scale (five-point, 100-point, letter, ...).
type GradeSystem struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Description    *string         `db:"description" json:"description,omitempty"`
	MinValue       float64         `db:"min_value" json:"min_value"`
	MaxValue       float64         `db:"max_value" json:"max_value"`
	PassingValue   float64         `db:"passing_value" json:"passing_value"`
	SystemType     GradeSystemType `db:"system_type" json:"system_type"`
	RoundingMethod RoundingMethod  `db:"rounding_method" json:"rounding_method"`
	DecimalPlaces  int             `db:"decimal_places" json:"decimal_places"`
	IsDefault      bool            `db:"is_default" json:"is_default"`
}

// GradeValue is one symbolic value inside a grade system. The percent range
// is half-open: [MinPercent, MaxPercent).
type GradeValue struct {
	ID            string  `db:"id" json:"id"`
	GradeSystemID string  `db:"grade_system_id" json:"grade_system_id"`
	Value         string  `db:"value" json:"value"`
	NumericValue  float64 `db:"numeric_value" json:"numeric_value"`
	MinPercent    float64 `db:"min_percent" json:"min_percent"`
	MaxPercent    float64 `db:"max_percent" json:"max_percent"`
	Description   *string `db:"description" json:"description,omitempty"`
	IsPassing     bool    `db:"is_passing" json:"is_passing"`
}

// GradingScale maps values between two grade systems.
type GradingScale struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Description    *string `db:"description" json:"description,omitempty"`
	SourceSystemID string  `db:"source_system_id" json:"source_system_id"`
	TargetSystemID string  `db:"target_system_id" json:"target_system_id"`
	IsActive       bool    `db:"is_active" json:"is_active"`
}

// GradeConversion is one value mapping within a grading scale; unique per
// (scale, source value).
type GradeConversion struct {
	ID            string `db:"id" json:"id"`
	ScaleID       string `db:"scale_id" json:"scale_id"`
	SourceValueID string `db:"source_value_id" json:"source_value_id"`
	TargetValueID string `db:"target_value_id" json:"target_value_id"`
}

// GradeType distinguishes current, exam, credit, course work, practice and
// final grades. Code is unique.
type GradeType struct {
	ID                   string  `db:"id" json:"id"`
	Name                 string  `db:"name" json:"name"`
	Code                 string  `db:"code" json:"code"`
	Description          *string `db:"description" json:"description,omitempty"`
	WeightInFinal        float64 `db:"weight_in_final" json:"weight_in_final"`
	DefaultGradeSystemID *string `db:"default_grade_system_id" json:"default_grade_system_id,omitempty"`
}
