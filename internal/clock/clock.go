// Package clock reports the current time in a zone and converts wall clock
// times between zones.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata" // zones resolve on hosts without a zoneinfo database

	"github.com/z58362026/mcp-packages/pkg/schema"
)

// DefaultTimezone is used when neither the caller nor the config names one.
const DefaultTimezone = "Asia/Shanghai"

const currentLayout = "2006-01-02 15:04:05"

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// Clock answers time queries relative to a default zone.
type Clock struct {
	defaultZone string
	now         func() time.Time
}

// New returns a Clock whose default zone is zone, or DefaultTimezone when
// zone is empty.
func New(zone string) *Clock {
	if zone == "" {
		zone = DefaultTimezone
	}
	return &Clock{defaultZone: zone, now: time.Now}
}

// CurrentTime is the result of get_current_time.
type CurrentTime struct {
	CurrentTime string `json:"currentTime"`
	Timezone    string `json:"timezone"`
}

// ConvertedTime is the result of convert_time.
type ConvertedTime struct {
	ConvertedTime string `json:"convertedTime"`
}

// Current returns the current time in zone, or the default zone.
func (c *Clock) Current(zone string) (*CurrentTime, error) {
	if zone == "" {
		zone = c.defaultZone
	}
	loc, err := load(zone)
	if err != nil {
		return nil, err
	}
	return &CurrentTime{
		CurrentTime: c.now().In(loc).Format(currentLayout),
		Timezone:    zone,
	}, nil
}

// Convert interprets hhmm as a wall clock time today in source and returns
// the same instant in target, formatted as RFC 3339.
func (c *Clock) Convert(source, clock, target string) (*ConvertedTime, error) {
	m := hhmm.FindStringSubmatch(clock)
	if m == nil {
		return nil, schema.Validationf("invalid time format %q, expected HH:MM", clock)
	}

	src, err := load(source)
	if err != nil {
		return nil, err
	}
	dst, err := load(target)
	if err != nil {
		return nil, err
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	today := c.now().In(src)
	at := time.Date(today.Year(), today.Month(), today.Day(), hour, minute, 0, 0, src)
	return &ConvertedTime{ConvertedTime: at.In(dst).Format(time.RFC3339)}, nil
}

func load(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, schema.Validationf("timezone is required")
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %w", schema.ErrValidation, zone, err)
	}
	return loc, nil
}
