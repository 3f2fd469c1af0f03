package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start time.Time
		end   *time.Time
		want  []time.Time
	}{
		{
			name:  "no end date returns start day only",
			start: time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC),
			end:   nil,
			want:  []time.Time{date(2024, 5, 20)},
		},
		{
			name:  "month rollover across year end",
			start: date(2023, 11, 15),
			end:   ptr(date(2024, 2, 10)),
			want: []time.Time{
				date(2023, 11, 1),
				date(2023, 12, 1),
				date(2024, 1, 1),
				date(2024, 2, 1),
			},
		},
		{
			name:  "same month yields one anchor",
			start: date(2024, 3, 5),
			end:   ptr(date(2024, 3, 28)),
			want:  []time.Time{date(2024, 3, 1)},
		},
		{
			name:  "start equals end",
			start: date(2024, 3, 5),
			end:   ptr(date(2024, 3, 5)),
			want:  []time.Time{date(2024, 3, 1)},
		},
		{
			name:  "start after end is empty",
			start: date(2024, 2, 15),
			end:   ptr(date(2024, 2, 10)),
			want:  []time.Time{},
		},
		{
			name:  "december to january only",
			start: date(2023, 12, 31),
			end:   ptr(date(2024, 1, 1)),
			want:  []time.Time{date(2023, 12, 1), date(2024, 1, 1)},
		},
		{
			name:  "full year",
			start: date(2023, 1, 31),
			end:   ptr(date(2023, 12, 1)),
			want: []time.Time{
				date(2023, 1, 1), date(2023, 2, 1), date(2023, 3, 1), date(2023, 4, 1),
				date(2023, 5, 1), date(2023, 6, 1), date(2023, 7, 1), date(2023, 8, 1),
				date(2023, 9, 1), date(2023, 10, 1), date(2023, 11, 1), date(2023, 12, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Generate(tt.start, tt.end))
		})
	}
}

func TestGenerate_AscendingAndFirstOfMonth(t *testing.T) {
	t.Parallel()

	got := Generate(date(2019, 6, 17), ptr(date(2024, 8, 2)))

	assert.Len(t, got, 63)
	for i, d := range got {
		assert.Equal(t, 1, d.Day(), "anchor %d is not the first of the month", i)
		if i > 0 {
			assert.True(t, d.After(got[i-1]), "anchors must be strictly ascending")
		}
	}
}

func TestFirstOfMonth(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+8", 8*60*60)
	assert.Equal(t, date(2024, 5, 1), FirstOfMonth(time.Date(2024, 5, 20, 23, 0, 0, 0, loc)))
}
