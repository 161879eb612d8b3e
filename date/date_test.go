package date_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/date"
)

func TestParseAndFormat(t *testing.T) {
	rq := require.New(t)

	d, err := date.Parse(date.DefaultFormat, "2024-01-05")
	rq.Nil(err)
	rq.Equal("2024-01-05", d.String())
	rq.Equal(2024, d.Year())
	rq.Equal(time.January, d.Month())
	rq.Equal(5, d.Day())

	_, err = date.Parse(date.DefaultFormat, "not a date")
	rq.NotNil(err)
}

func TestMustParse(t *testing.T) {
	rq := require.New(t)
	rq.Equal(date.New(2023, time.June, 30), date.MustParse("2023-06-30"))
}

func TestArithmetic(t *testing.T) {
	rq := require.New(t)

	d := date.New(2024, time.February, 28)
	rq.Equal(date.New(2024, time.February, 29), d.AddDays(1))
	rq.Equal(date.New(2024, time.March, 1), d.AddDays(2))
	rq.Equal(date.New(2025, time.February, 28), d.AddYears(1))

	rq.Equal(366, date.New(2025, time.February, 28).DaysSince(d))
	rq.Equal(1, d.AddDays(1).DaysSince(d))
	rq.Equal(0, d.DaysSince(d))
}

func TestComparisons(t *testing.T) {
	rq := require.New(t)

	a := date.New(2024, time.January, 5)
	b := date.New(2024, time.January, 10)
	rq.True(a.Before(b))
	rq.False(b.Before(a))
	rq.True(b.After(a))
	rq.True(a.Equal(a))
	rq.False(a.Equal(b))
}

func TestZeroAndToday(t *testing.T) {
	rq := require.New(t)

	rq.True(date.Date{}.IsZero())
	rq.False(date.New(2024, time.January, 1).IsZero())

	date.TodaysDateForTest = date.New(3000, 1, 1)
	defer func() { date.TodaysDateForTest = date.Date{} }()
	rq.Equal(date.New(3000, 1, 1), date.Today())
}
