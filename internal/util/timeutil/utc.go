package timeutil

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// UTCTime is a time column that is always written and read back in UTC, so that
// ordering by it in SQL matches chronological order.
type UTCTime time.Time

func FromTime(t time.Time) UTCTime {
	return UTCTime(t.UTC())
}

func (t UTCTime) Value() (driver.Value, error) {
	return time.Time(t).UTC(), nil
}

func (t UTCTime) UTC() time.Time {
	return time.Time(t).UTC()
}

func (t *UTCTime) Scan(value any) error {
	if value == nil {
		*t = UTCTime{}
		return nil
	}
	cvt, err := driver.DefaultParameterConverter.ConvertValue(value)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	cvtTime, ok := cvt.(time.Time)
	if !ok {
		return fmt.Errorf("expected type time.Time, got type %T", cvt)
	}
	*t = FromTime(cvtTime)
	return nil
}
