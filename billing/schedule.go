/*
schedule.go - Calendar index over work entries

PURPOSE:
  One canonical grouping of work entries by date, rebuilt from the full
  collection whenever it changes. Month, week and day calendars are read
  projections of the same index, never separate filters.

PROJECTIONS:
  Month: Sunday-started weeks covering the whole month, padded with the
         adjacent months' days (InMonth=false).
  Week:  Sunday..Saturday containing the date. Only entries with a valid
         start < end time range are placed into time slots.
  Day:   All entries of the date, ordered by start time; entries without a
         start time sort last (as "24:00").

  Entries without times stay in the index and count for invoicing; they are
  only left out of the time-slotted week projection.

MOVING ENTRIES:
  MoveEntry returns the replacement record with only Date changed. The
  caller persists it (Ledger.MoveWorkEntry). Moving to the same date is a
  no-op reported as moved=false.
*/
package billing

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/warp/billing-engine/generic"
)

// ScheduleIndex maps a date key (YYYY-MM-DD) to that day's entries in
// insertion order.
type ScheduleIndex struct {
	byDate  map[string][]WorkEntry
	entries []WorkEntry
}

// NewScheduleIndex builds the index. The input slice is not retained.
func NewScheduleIndex(entries []WorkEntry) *ScheduleIndex {
	all := append([]WorkEntry(nil), entries...)
	return &ScheduleIndex{
		byDate: lo.GroupBy(all, func(e WorkEntry) string {
			return e.Date.Key()
		}),
		entries: all,
	}
}

// On returns the entries dated d, never nil.
func (ix *ScheduleIndex) On(d generic.Date) []WorkEntry {
	entries := ix.byDate[d.Key()]
	if entries == nil {
		return []WorkEntry{}
	}
	return append([]WorkEntry(nil), entries...)
}

// Len is the number of indexed entries.
func (ix *ScheduleIndex) Len() int { return len(ix.entries) }

// Dates returns every date that has at least one entry, ascending.
func (ix *ScheduleIndex) Dates() []generic.Date {
	keys := lo.Keys(ix.byDate)
	sort.Strings(keys)
	return lo.Map(keys, func(k string, _ int) generic.Date {
		return ix.byDate[k][0].Date
	})
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// DaySchedule is one calendar cell.
type DaySchedule struct {
	Date    generic.Date `json:"date"`
	InMonth bool         `json:"in_month"`
	Entries []WorkEntry  `json:"entries"`
}

// MonthView is a month grid of Sunday-started weeks.
type MonthView struct {
	Year  int             `json:"year"`
	Month time.Month      `json:"month"`
	Weeks [][]DaySchedule `json:"weeks"`
}

// Month returns the grid for year/month padded to whole weeks.
func (ix *ScheduleIndex) Month(year int, month time.Month) (MonthView, error) {
	if err := validateMonth(month); err != nil {
		return MonthView{}, err
	}
	first := generic.StartOfMonth(year, month)
	last := generic.EndOfMonth(year, month)
	grid := generic.Period{Start: generic.StartOfWeek(first), End: generic.EndOfWeek(last)}

	view := MonthView{Year: year, Month: month}
	days := grid.Days()
	for i := 0; i < len(days); i += 7 {
		week := make([]DaySchedule, 0, 7)
		for _, d := range days[i : i+7] {
			week = append(week, DaySchedule{
				Date:    d,
				InMonth: d.Month() == month && d.Year() == year,
				Entries: ix.On(d),
			})
		}
		view.Weeks = append(view.Weeks, week)
	}
	return view, nil
}

// Slot is an entry placed on the time axis.
type Slot struct {
	Entry WorkEntry         `json:"entry"`
	Start generic.ClockTime `json:"start"`
	End   generic.ClockTime `json:"end"`
}

// TimedDay is one column of the week view.
type TimedDay struct {
	Date  generic.Date `json:"date"`
	Slots []Slot       `json:"slots"`
}

// WeekView is Sunday..Saturday around a date.
type WeekView struct {
	Start generic.Date `json:"start"`
	Days  []TimedDay   `json:"days"`
}

// Week returns the time-slotted view of the week containing d.
func (ix *ScheduleIndex) Week(d generic.Date) WeekView {
	start := generic.StartOfWeek(d)
	view := WeekView{Start: start, Days: make([]TimedDay, 0, 7)}
	for i := 0; i < 7; i++ {
		day := start.AddDays(i)
		slots := []Slot{}
		for _, e := range ix.byDate[day.Key()] {
			if slot, ok := slotFor(e); ok {
				slots = append(slots, slot)
			}
		}
		view.Days = append(view.Days, TimedDay{Date: day, Slots: slots})
	}
	return view
}

func slotFor(e WorkEntry) (Slot, bool) {
	if e.StartTime == "" || e.EndTime == "" {
		return Slot{}, false
	}
	start, err := generic.ParseClockTime(e.StartTime)
	if err != nil {
		return Slot{}, false
	}
	end, err := generic.ParseClockTime(e.EndTime)
	if err != nil || end <= start {
		return Slot{}, false
	}
	return Slot{Entry: e, Start: start, End: end}, true
}

// Day returns d's entries ordered by start time, untimed entries last.
func (ix *ScheduleIndex) Day(d generic.Date) []WorkEntry {
	entries := ix.On(d)
	sort.SliceStable(entries, func(i, j int) bool {
		return startOrEndOfDay(entries[i]) < startOrEndOfDay(entries[j])
	})
	return entries
}

func startOrEndOfDay(e WorkEntry) generic.ClockTime {
	t, err := generic.ParseClockTime(e.StartTime)
	if err != nil {
		return generic.EndOfDay
	}
	return t
}

// =============================================================================
// MOVE
// =============================================================================

// MoveEntry returns entryID re-dated to newDate with every other field
// unchanged. moved is false when the entry is already on newDate.
func (ix *ScheduleIndex) MoveEntry(entryID string, newDate generic.Date) (entry WorkEntry, moved bool, err error) {
	if newDate.IsZero() {
		return WorkEntry{}, false, generic.NewValidationError("date", "", "required")
	}
	entry, ok := lo.Find(ix.entries, func(e WorkEntry) bool { return e.ID == entryID })
	if !ok {
		return WorkEntry{}, false, generic.ErrEntryNotFound
	}
	if entry.Date.Equal(newDate) {
		return entry, false, nil
	}
	entry.Date = newDate
	return entry, true, nil
}
