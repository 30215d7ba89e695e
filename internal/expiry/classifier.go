// Package expiry classifies a certification's time-to-expiry into a fixed
// ladder of milestone buckets.
package expiry

import "time"

// Bucket is one of the eight expiry-urgency classifications. Safe and
// Overdue are terminal with respect to notification semantics: Safe never
// triggers a send, Overdue repeats daily until the record is renewed.
type Bucket string

const (
	BucketSafe        Bucket = "safe"
	BucketSixMonths   Bucket = "6-months"
	BucketThreeMonths Bucket = "3-months"
	BucketMonth       Bucket = "month"
	BucketTwoWeeks    Bucket = "2-weeks"
	BucketWeek        Bucket = "week"
	BucketDayBefore   Bucket = "day-before"
	BucketOverdue     Bucket = "overdue"
)

var labels = map[Bucket]string{
	BucketSafe:        "Valid",
	BucketSixMonths:   "6 Months Before Expiry",
	BucketThreeMonths: "3 Months Before Expiry",
	BucketMonth:       "1 Month Before Expiry",
	BucketTwoWeeks:    "2 Weeks Before Expiry",
	BucketWeek:        "1 Week Before Expiry",
	BucketDayBefore:   "1 Day Before Expiry",
	BucketOverdue:     "Overdue",
}

// Label returns the human-readable display name of the bucket.
func (b Bucket) Label() string {
	if l, ok := labels[b]; ok {
		return l
	}
	return string(b)
}

// Notifiable reports whether the bucket owes any notification at all.
func (b Bucket) Notifiable() bool {
	return b != BucketSafe
}

// Classify maps a validity-end date to a milestone bucket, given "today".
// Both inputs are compared as calendar dates with time-of-day stripped; a
// missing validity end classifies Safe (nothing to track, never alarm).
// First match wins, walking from most to least urgent. The 2-weeks bucket
// uses a precise day count (<= 14 days), not a calendar-week diff.
func Classify(validityEnd *time.Time, today time.Time) Bucket {
	if validityEnd == nil || validityEnd.IsZero() {
		return BucketSafe
	}

	end := dateOnly(*validityEnd)
	now := dateOnly(today)

	if end.Before(now) {
		return BucketOverdue
	}

	days := int(end.Sub(now).Hours() / 24)
	switch {
	case days <= 1:
		return BucketDayBefore
	case days <= 7:
		return BucketWeek
	case days <= 14:
		return BucketTwoWeeks
	}

	switch months := monthsUntil(now, end); {
	case months <= 1:
		return BucketMonth
	case months <= 3:
		return BucketThreeMonths
	case months <= 6:
		return BucketSixMonths
	}

	return BucketSafe
}

// dateOnly strips the time of day and the zone, so two values compare as the
// calendar dates they carry in their own locations.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthsUntil computes elapsed calendar months from now to end with a
// day-of-month borrow: Jan 20 -> Mar 10 is one month, not two.
func monthsUntil(now, end time.Time) int {
	months := (end.Year()*12 + int(end.Month())) - (now.Year()*12 + int(now.Month()))
	if end.Day() < now.Day() {
		months--
	}
	return months
}
