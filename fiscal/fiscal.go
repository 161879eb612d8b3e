// Package fiscal classifies dates into fiscal (tax) years with a
// configurable start day, eg. the Australian year starting 1 July.
package fiscal

import (
	"fmt"
	"time"

	"github.com/sharelot/sharelot/date"
)

type YearType struct {
	Description string
	StartMonth  time.Month
	StartDay    int
}

func Australian() YearType {
	return YearType{Description: "Australian Tax Year", StartMonth: time.July, StartDay: 1}
}

func Calendar() YearType {
	return YearType{Description: "Calendar Year", StartMonth: time.January, StartDay: 1}
}

// Year is one fiscal year of a given type. StartYear is the calendar year
// in which the fiscal year begins.
type Year struct {
	Type      YearType
	StartYear int
}

// ClassifyDate returns the fiscal year containing d.
func (t YearType) ClassifyDate(d date.Date) Year {
	startYear := d.Year()
	yearStart := date.New(uint32(d.Year()), t.StartMonth, uint32(t.StartDay))
	if d.Before(yearStart) {
		startYear--
	}
	return Year{Type: t, StartYear: startYear}
}

func (y Year) StartDate() date.Date {
	return date.New(uint32(y.StartYear), y.Type.StartMonth, uint32(y.Type.StartDay))
}

func (y Year) EndDate() date.Date {
	return y.StartDate().AddYears(1).AddDays(-1)
}

// Name is "2024" for calendar-aligned years, "FY2024/25" otherwise.
func (y Year) Name() string {
	if y.Type.StartMonth == time.January && y.Type.StartDay == 1 {
		return fmt.Sprintf("%d", y.StartYear)
	}
	return fmt.Sprintf("FY%d/%02d", y.StartYear, (y.StartYear+1)%100)
}
