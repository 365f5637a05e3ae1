// Package schedule edits the weekly programming grid. Each weekday is one
// document whose id is the day name; entries are addressed by position.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lysyi3m/radio-site/app/apperr"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/metrics"
	"github.com/lysyi3m/radio-site/app/revalidate"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/validation"
)

// Days in display order. They double as document ids.
var Days = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

var paths = []string{revalidate.PathHome, revalidate.PathSchedule, revalidate.PathAdminSchedule}

type Editor struct {
	store store.Store
	reval revalidate.Revalidator
}

func NewEditor(s store.Store, r revalidate.Revalidator) *Editor {
	if r == nil {
		r = revalidate.Nop{}
	}
	return &Editor{store: s, reval: r}
}

// ValidDay reports whether day is one of Days.
func ValidDay(day string) bool {
	return slices.Contains(Days, day)
}

func checkDay(day string) error {
	if !ValidDay(day) {
		return fmt.Errorf("%w: unknown day %q", apperr.ErrInvalidArgument, day)
	}
	return nil
}

// Week returns all seven days in order. Days never written come back empty.
func (e *Editor) Week(ctx context.Context) ([]content.ScheduleDay, error) {
	week := make([]content.ScheduleDay, 0, len(Days))
	for _, day := range Days {
		d, err := e.Day(ctx, day)
		if err != nil {
			return nil, err
		}
		week = append(week, d)
	}
	return week, nil
}

func (e *Editor) Day(ctx context.Context, day string) (content.ScheduleDay, error) {
	if err := checkDay(day); err != nil {
		return content.ScheduleDay{}, err
	}

	snap, err := e.store.Get(ctx, content.CollectionWeeklySchedule, day)
	if errors.Is(err, store.ErrNotFound) {
		return content.ScheduleDay{Day: day, Schedule: []content.Program{}}, nil
	}
	if err != nil {
		return content.ScheduleDay{}, apperr.Persistence("get", content.CollectionWeeklySchedule, err)
	}

	d, err := decode(snap, day)
	if err != nil {
		return content.ScheduleDay{}, apperr.Persistence("decode", content.CollectionWeeklySchedule, err)
	}
	return d, nil
}

func decode(snap store.Snapshot, day string) (content.ScheduleDay, error) {
	var d content.ScheduleDay
	if snap != nil {
		if err := snap.DataTo(&d); err != nil {
			return d, err
		}
	}
	d.Day = day
	if d.Schedule == nil {
		d.Schedule = []content.Program{}
	}
	return d, nil
}

func sortEntries(entries []content.Program) {
	slices.SortStableFunc(entries, func(a, b content.Program) int {
		return strings.Compare(a.Time, b.Time)
	})
}

// edit rewrites one day inside a transaction.
func (e *Editor) edit(ctx context.Context, op, day string, fn func([]content.Program) ([]content.Program, error)) (content.ScheduleDay, error) {
	if err := checkDay(day); err != nil {
		return content.ScheduleDay{}, err
	}

	var out content.ScheduleDay
	var rejected error
	err := e.store.Transact(ctx, content.CollectionWeeklySchedule, day, func(cur store.Snapshot) (any, error) {
		rejected = nil
		d, err := decode(cur, day)
		if err != nil {
			return nil, err
		}
		entries, err := fn(slices.Clone(d.Schedule))
		if err != nil {
			rejected = err
			return nil, err
		}
		sortEntries(entries)
		out = content.ScheduleDay{Day: day, Schedule: entries}
		return &out, nil
	})
	if err != nil {
		metrics.ContentWrites.WithLabelValues(content.CollectionWeeklySchedule, op, "error").Inc()
		if rejected != nil && errors.Is(err, rejected) {
			return content.ScheduleDay{}, err
		}
		return content.ScheduleDay{}, apperr.Persistence(op, content.CollectionWeeklySchedule, err)
	}

	metrics.ContentWrites.WithLabelValues(content.CollectionWeeklySchedule, op, "ok").Inc()
	e.reval.Revalidate(paths...)
	slog.Debug("Schedule updated", "day", day, "operation", op, "entries", len(out.Schedule))
	return out, nil
}

// checkExpected fails with ErrConflict unless index still holds expected.
func checkExpected(entries []content.Program, index int, expected content.Program) error {
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: entry %d no longer exists", apperr.ErrConflict, index)
	}
	if entries[index] != expected {
		return fmt.Errorf("%w: entry %d was changed by someone else", apperr.ErrConflict, index)
	}
	return nil
}

func (e *Editor) AddEntry(ctx context.Context, day string, entry content.Program) (content.ScheduleDay, error) {
	if err := validation.Struct(&entry); err != nil {
		return content.ScheduleDay{}, err
	}
	return e.edit(ctx, "add", day, func(entries []content.Program) ([]content.Program, error) {
		return append(entries, entry), nil
	})
}

// UpdateEntry replaces the entry at index, provided it still equals
// expected.
func (e *Editor) UpdateEntry(ctx context.Context, day string, index int, expected, entry content.Program) (content.ScheduleDay, error) {
	if err := validation.Struct(&entry); err != nil {
		return content.ScheduleDay{}, err
	}
	return e.edit(ctx, "update", day, func(entries []content.Program) ([]content.Program, error) {
		if err := checkExpected(entries, index, expected); err != nil {
			return nil, err
		}
		entries[index] = entry
		return entries, nil
	})
}

// DeleteEntry removes the entry at index, provided it still equals
// expected.
func (e *Editor) DeleteEntry(ctx context.Context, day string, index int, expected content.Program) (content.ScheduleDay, error) {
	return e.edit(ctx, "delete", day, func(entries []content.Program) ([]content.Program, error) {
		if err := checkExpected(entries, index, expected); err != nil {
			return nil, err
		}
		return slices.Delete(entries, index, index+1), nil
	})
}

// ReplaceDay overwrites the whole day.
func (e *Editor) ReplaceDay(ctx context.Context, day string, entries []content.Program) (content.ScheduleDay, error) {
	for i := range entries {
		if err := validation.Struct(&entries[i]); err != nil {
			return content.ScheduleDay{}, err
		}
	}
	replacement := slices.Clone(entries)
	if replacement == nil {
		replacement = []content.Program{}
	}
	return e.edit(ctx, "replace", day, func([]content.Program) ([]content.Program, error) {
		return replacement, nil
	})
}
