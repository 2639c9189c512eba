package utils

import (
	"math"
	"reflect"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func FormatEpoch(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

// ParseDate reads a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return TruncateDay(time.Now())
}

// AddMonths moves t forward by n calendar months. When the target month is
// shorter, the day is clamped to its last day (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	hh, mm, ss := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// RoundMoney rounds to two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// Sanitize trims every string reachable from the struct o points to,
// including *string fields and slices of strings or nested structs.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}
	sanitizeStruct(v)
}

func sanitizeStruct(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).IsExported() {
			continue
		}
		sanitizeValue(v.Field(i))
	}
}

func sanitizeValue(field reflect.Value) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(sanitizeString(field.String()))

	case reflect.Ptr:
		if !field.IsNil() {
			sanitizeValue(field.Elem())
		}

	case reflect.Struct:
		sanitizeStruct(field)

	case reflect.Slice:
		for j := 0; j < field.Len(); j++ {
			sanitizeValue(field.Index(j))
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
