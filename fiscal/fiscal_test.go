package fiscal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/fiscal"
)

func TestAustralianClassification(t *testing.T) {
	rq := require.New(t)
	au := fiscal.Australian()

	// 30 June belongs to the year that started the previous July.
	rq.Equal(2023, au.ClassifyDate(date.New(2024, time.June, 30)).StartYear)
	// 1 July starts a new year.
	rq.Equal(2024, au.ClassifyDate(date.New(2024, time.July, 1)).StartYear)
	rq.Equal(2024, au.ClassifyDate(date.New(2024, time.December, 31)).StartYear)
	rq.Equal(2024, au.ClassifyDate(date.New(2025, time.January, 1)).StartYear)
}

func TestCalendarClassification(t *testing.T) {
	rq := require.New(t)
	cal := fiscal.Calendar()

	rq.Equal(2024, cal.ClassifyDate(date.New(2024, time.January, 1)).StartYear)
	rq.Equal(2024, cal.ClassifyDate(date.New(2024, time.December, 31)).StartYear)
	rq.Equal(2023, cal.ClassifyDate(date.New(2023, time.December, 31)).StartYear)
}

func TestStartAndEndDates(t *testing.T) {
	rq := require.New(t)

	y := fiscal.Year{Type: fiscal.Australian(), StartYear: 2024}
	rq.Equal(date.New(2024, time.July, 1), y.StartDate())
	rq.Equal(date.New(2025, time.June, 30), y.EndDate())

	cy := fiscal.Year{Type: fiscal.Calendar(), StartYear: 2024}
	rq.Equal(date.New(2024, time.January, 1), cy.StartDate())
	rq.Equal(date.New(2024, time.December, 31), cy.EndDate())
}

func TestNames(t *testing.T) {
	rq := require.New(t)

	rq.Equal("FY2024/25", fiscal.Year{Type: fiscal.Australian(), StartYear: 2024}.Name())
	rq.Equal("FY2099/00", fiscal.Year{Type: fiscal.Australian(), StartYear: 2099}.Name())
	rq.Equal("2024", fiscal.Year{Type: fiscal.Calendar(), StartYear: 2024}.Name())
}
