package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{date(2025, time.July, 31), 2024},
		{date(2025, time.August, 1), 2025},
		{date(2025, time.December, 31), 2025},
		{date(2026, time.January, 1), 2025},
		{date(2024, time.February, 29), 2023},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tt.want, YearOf(tt.date))
		})
	}
}

func TestWindowOf(t *testing.T) {
	w := WindowOf(2025, time.UTC)
	assert.Equal(t, date(2025, time.August, 1), w.Start)
	assert.Equal(t, time.Date(2026, time.July, 31, 23, 59, 59, 0, time.UTC), w.End)
	assert.Equal(t, "FY2025", w.Label())
}

func TestWindowContainsBounds(t *testing.T) {
	w := WindowOf(2025, time.UTC)
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
}

func TestEveryDateBelongsToItsFiscalYear(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		y := rapid.IntRange(1990, 2100).Draw(t, "year")
		m := rapid.IntRange(1, 12).Draw(t, "month")
		d := rapid.IntRange(1, 28).Draw(t, "day")
		dt := time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)

		w := WindowOf(YearOf(dt), time.UTC)
		if !w.Contains(dt) {
			t.Fatalf("%s not contained in %s window [%s, %s]", dt, w.Label(), w.Start, w.End)
		}
	})
}
