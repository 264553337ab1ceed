// Package httpapi provides an HTTP REST API over the business calendar:
// shifting and normalizing instants, querying business days and holidays.
package httpapi

// ShiftRequest asks to displace a moment by business time. Exactly one of
// Duration and BusinessDays must be set. Duration uses Go syntax ("90m",
// "-1h30m"); Time is RFC 3339.
type ShiftRequest struct {
	Time         string `json:"time"`
	Duration     string `json:"duration,omitempty"`
	BusinessDays *int   `json:"business_days,omitempty"`
}

// NormalizeRequest asks to snap a moment onto the business timeline.
type NormalizeRequest struct {
	Time string `json:"time"`
}

// TimeResponse carries a resolved business moment in RFC 3339.
type TimeResponse struct {
	Result string `json:"result"`
}

// BusinessDayResponse describes a single calendar date.
type BusinessDayResponse struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	BusinessDay bool   `json:"business_day"`
	Holiday     string `json:"holiday,omitempty"`
}

// HolidayJSON is a single configured holiday.
type HolidayJSON struct {
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}

// HolidaysResponse lists holidays within a requested range.
type HolidaysResponse struct {
	Holidays []HolidayJSON `json:"holidays"`
}

// WindowResponse describes the configured business window and working week.
type WindowResponse struct {
	DayStart    string   `json:"day_start"`
	DayEnd      string   `json:"day_end"`
	WorkingWeek []string `json:"working_week"`
	Timezone    string   `json:"timezone"`
}
