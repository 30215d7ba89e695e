package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestClassify(t *testing.T) {
	today := date(2026, time.March, 15)

	tests := []struct {
		name        string
		validityEnd *time.Time
		want        Bucket
	}{
		{"no validity end", nil, BucketSafe},
		{"zero validity end", ptr(time.Time{}), BucketSafe},
		{"expired yesterday", ptr(date(2026, time.March, 14)), BucketOverdue},
		{"expired years ago", ptr(date(2019, time.January, 1)), BucketOverdue},
		{"expires today", ptr(date(2026, time.March, 15)), BucketDayBefore},
		{"expires tomorrow", ptr(date(2026, time.March, 16)), BucketDayBefore},
		{"expires in 2 days", ptr(date(2026, time.March, 17)), BucketWeek},
		{"expires in 7 days", ptr(date(2026, time.March, 22)), BucketWeek},
		{"expires in 8 days", ptr(date(2026, time.March, 23)), BucketTwoWeeks},
		{"expires in 14 days", ptr(date(2026, time.March, 29)), BucketTwoWeeks},
		{"expires in 15 days", ptr(date(2026, time.March, 30)), BucketMonth},
		{"expires in one month", ptr(date(2026, time.April, 15)), BucketMonth},
		{"expires in three months", ptr(date(2026, time.June, 15)), BucketThreeMonths},
		{"month borrow rule", ptr(date(2026, time.July, 10)), BucketThreeMonths}, // four month-numbers away, three elapsed by the borrow
		{"expires in six months", ptr(date(2026, time.September, 15)), BucketSixMonths},
		{"just past six months", ptr(date(2026, time.September, 16)), BucketSixMonths},
		{"expires in seven months", ptr(date(2026, time.October, 16)), BucketSafe},
		{"expires in 200 days", ptr(today.AddDate(0, 0, 200)), BucketSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.validityEnd, today))
		})
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, time.March, 15, 23, 50, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 15, 0, 5, 0, 0, time.UTC)

	// Same calendar date: not overdue, even though end < today as instants.
	assert.Equal(t, BucketDayBefore, Classify(&end, today))
}

func TestMonthsUntilBorrow(t *testing.T) {
	// Jan 20 -> Mar 10 is one elapsed calendar month, not two.
	assert.Equal(t, 1, monthsUntil(date(2026, time.January, 20), date(2026, time.March, 10)))
	assert.Equal(t, 2, monthsUntil(date(2026, time.January, 10), date(2026, time.March, 10)))
	assert.Equal(t, 12, monthsUntil(date(2026, time.January, 1), date(2027, time.January, 15)))
}

func TestBucketLabels(t *testing.T) {
	assert.Equal(t, "Overdue", BucketOverdue.Label())
	assert.Equal(t, "Valid", BucketSafe.Label())
	assert.Equal(t, "3 Months Before Expiry", BucketThreeMonths.Label())
}

func TestNotifiable(t *testing.T) {
	assert.False(t, BucketSafe.Notifiable())
	for _, b := range []Bucket{BucketOverdue, BucketDayBefore, BucketWeek, BucketTwoWeeks, BucketMonth, BucketThreeMonths, BucketSixMonths} {
		assert.True(t, b.Notifiable(), string(b))
	}
}
