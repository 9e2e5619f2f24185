package scheduler

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"seoforge/internal/core"
)

// Defaults when a website's scheduling fields are unset.
const (
	defaultMinHours    = 24
	defaultMaxHours    = 96
	defaultDaysBetween = 3
	defaultWindowStart = 9
	defaultWindowEnd   = 17
)

func (s *Scheduler) nextRun(website core.Website, now time.Time) time.Time {
	return nextRunAt(website, now, s.randSource())
}

// nextRunAt computes the website's next publication time.
//
// fixed:  now + days_between_posts days, at preferred_time.
// window: now + random(min,max) hours, snapped forward to a preferred
// weekday, hour drawn from the posting window excluding the last posting
// hour when there is a choice.
// random: now + random(min,max) hours, hour uniform in 6..22.
func nextRunAt(website core.Website, now time.Time, rng *rand.Rand) time.Time {
	switch website.ScheduleMode {
	case core.ScheduleFixed:
		return fixedNextRun(website, now)
	case core.ScheduleWindow:
		return windowNextRun(website, now, rng)
	default:
		return randomNextRun(website, now, rng)
	}
}

func fixedNextRun(website core.Website, now time.Time) time.Time {
	days := website.DaysBetweenPosts
	if days <= 0 {
		days = defaultDaysBetween
	}
	hour, minute := parsePreferredTime(website.PreferredTime)
	target := now.AddDate(0, 0, days)
	return time.Date(target.Year(), target.Month(), target.Day(), hour, minute, 0, 0, now.Location())
}

func windowNextRun(website core.Website, now time.Time, rng *rand.Rand) time.Time {
	minHours, maxHours := hoursBetween(website)
	target := now.Add(time.Duration(randBetween(rng, minHours, maxHours)) * time.Hour)

	// Snap forward to a preferred weekday, bounded to 7 attempts.
	if len(website.PreferredDays) > 0 {
		for i := 0; i < 7 && !preferredDay(website.PreferredDays, target.Weekday()); i++ {
			target = target.AddDate(0, 0, 1)
		}
	}

	hour := pickWindowHour(website, rng)
	minute := rng.Intn(60)
	return time.Date(target.Year(), target.Month(), target.Day(), hour, minute, 0, 0, now.Location())
}

func randomNextRun(website core.Website, now time.Time, rng *rand.Rand) time.Time {
	minHours, maxHours := hoursBetween(website)
	target := now.Add(time.Duration(randBetween(rng, minHours, maxHours)) * time.Hour)

	hour := randBetween(rng, 6, 22)
	minute := rng.Intn(60)
	return time.Date(target.Year(), target.Month(), target.Day(), hour, minute, 0, 0, now.Location())
}

// pickWindowHour draws an hour from the posting window, excluding the
// last posting hour when more than one option exists.
func pickWindowHour(website core.Website, rng *rand.Rand) int {
	start, end := website.PostingWindowStart, website.PostingWindowEnd
	if start == 0 && end == 0 {
		start, end = defaultWindowStart, defaultWindowEnd
	}
	if end < start {
		end = start
	}

	options := make([]int, 0, end-start+1)
	for h := start; h <= end; h++ {
		options = append(options, h)
	}
	if website.LastPostingHour != nil && len(options) > 1 {
		filtered := options[:0]
		for _, h := range options {
			if h != *website.LastPostingHour {
				filtered = append(filtered, h)
			}
		}
		if len(filtered) > 0 {
			options = filtered
		}
	}
	return options[rng.Intn(len(options))]
}

func hoursBetween(website core.Website) (int, int) {
	minHours, maxHours := website.MinHoursBetween, website.MaxHoursBetween
	if minHours <= 0 {
		minHours = defaultMinHours
	}
	if maxHours < minHours {
		maxHours = defaultMaxHours
	}
	if maxHours < minHours {
		maxHours = minHours
	}
	return minHours, maxHours
}

func preferredDay(days []int, weekday time.Weekday) bool {
	for _, d := range days {
		if time.Weekday(d) == weekday {
			return true
		}
	}
	return false
}

func randBetween(rng *rand.Rand, low, high int) int {
	if high <= low {
		return low
	}
	return low + rng.Intn(high-low+1)
}

// parsePreferredTime parses "HH:MM", defaulting to 09:00.
func parsePreferredTime(s string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 9, 0
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 9, 0
	}
	return hour, minute
}
