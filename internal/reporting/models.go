package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// BirthsSummaryRequest requests aggregated delivery metrics. Shift narrows
// the summary to one ward shift when set.

type BirthsSummaryRequest struct {
	Range TimeRange `json:"range"`
	Shift string    `json:"shift,omitempty"`
}

type BirthsSummary struct {
	Shift string `json:"shift,omitempty"`

	TotalBirths        int `json:"total_births"`
	EutocicBirths      int `json:"eutocic_births"`
	ElectiveCesareans  int `json:"elective_cesareans"`
	EmergencyCesareans int `json:"emergency_cesareans"`
	ForcepsBirths      int `json:"forceps_births"`
	VacuumBirths       int `json:"vacuum_births"`

	Stillbirths int `json:"stillbirths"`

	DayShiftBirths     int `json:"day_shift_births"`
	EveningShiftBirths int `json:"evening_shift_births"`
	NightShiftBirths   int `json:"night_shift_births"`

	AverageWeightGrams int     `json:"average_weight_grams"`
	AverageApgar5      float64 `json:"average_apgar_5"`
}

// DeathsSummaryRequest requests aggregated mortality metrics over a range.

type DeathsSummaryRequest struct {
	Range TimeRange `json:"range"`
}

type DeathsSummary struct {
	TotalDeaths    int `json:"total_deaths"`
	MaternalDeaths int `json:"maternal_deaths"`
	NeonatalDeaths int `json:"neonatal_deaths"`

	DeathsByCause map[string]int `json:"deaths_by_cause"`
}
