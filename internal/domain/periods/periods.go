// Package periods rebuilds the ordered period structure of an event from the
// flat score, time and label maps carried on upstream event records.
package periods

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
	"github.com/JolanDUBOIS/sport-index/pkg/metrics"
)

// Kind classifies a period descriptor.
type Kind string

const (
	KindNormal    Kind = "normal"
	KindTiebreak  Kind = "tiebreak"
	KindOvertime  Kind = "overtime"
	KindPenalties Kind = "penalties"
)

const (
	overtimeKey       = "overtime"
	penaltiesKey      = "penalties"
	injuryTimePrefix  = "injuryTime"
	defaultOTLabel    = "Overtime"
	defaultPensLabel  = "Penalty Shootout"
	tiebreakLabelTail = " Tie-Break"

	// maxPeriodCount bounds the declared count; real formats stay far below.
	maxPeriodCount = 64
)

// Descriptor is one period, set, overtime or shootout of an event.
type Descriptor struct {
	Key             string           `json:"key"`
	Kind            Kind             `json:"kind"`
	Label           *string          `json:"label,omitempty"`
	Score           *model.ScorePair `json:"score,omitempty"`
	ElapsedTime     *int             `json:"elapsedTime,omitempty"`
	DefaultDuration *int             `json:"defaultDuration,omitempty"`
	StoppageTime    []int            `json:"stoppageTime,omitempty"`
}

// Periods is the reconstructed structure of one event.
type Periods struct {
	DefaultCount int          `json:"defaultCount"`
	Periods      []Descriptor `json:"periods"`
}

// Reconstructor turns event records into period structures. It only logs;
// the reconstruction itself is pure.
type Reconstructor struct {
	logger logger.Logger
}

// Option applies a configuration option to the Reconstructor.
type Option func(*Reconstructor)

// WithLogger sets a custom logger for the reconstructor.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconstructor) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconstructor creates a reconstructor with configuration options.
func NewReconstructor(opts ...Option) *Reconstructor {
	r := &Reconstructor{logger: logger.NamedOrNop("periods")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconstruct returns the periods of rec, ordered normals, tiebreaks,
// overtime, penalties. The boolean is false when rec declares no period
// count, or a negative or implausibly large one; that is a property of the
// data, not an error.
func (r *Reconstructor) Reconstruct(ctx context.Context, rec model.RawEventRecord) (Periods, bool) {
	if rec.DefaultPeriodCount == nil {
		metrics.RecordPeriodsNotApplicable()
		r.logger.Warn(ctx, "Event has no declared period count", logger.Int64("event_id", rec.ID))
		return Periods{}, false
	}
	count := *rec.DefaultPeriodCount
	if count < 0 || count > maxPeriodCount {
		metrics.RecordPeriodsNotApplicable()
		r.logger.Warn(ctx, "Event declares an implausible period count",
			logger.Int64("event_id", rec.ID),
			logger.Int("count", count))
		return Periods{}, false
	}
	out := make([]Descriptor, 0, count+2)

	for k := 1; k <= count; k++ {
		key := periodKey(k)
		d := Descriptor{
			Key:             key,
			Kind:            KindNormal,
			Label:           label(rec.Periods, key),
			Score:           pair(rec, key),
			ElapsedTime:     lookup(rec.Time, key),
			DefaultDuration: clone(rec.DefaultPeriodLength),
		}
		if st, ok := rec.Time[injuryTimePrefix+strconv.Itoa(k)]; ok && st != 0 {
			d.StoppageTime = []int{st}
		}
		out = append(out, d)
	}

	for k := 1; k <= count; k++ {
		key := periodKey(k) + "TieBreak"
		score := pair(rec, key)
		if score == nil {
			continue
		}
		out = append(out, Descriptor{
			Key:   key,
			Kind:  KindTiebreak,
			Label: tiebreakLabel(rec.Periods, k, key),
			Score: score,
		})
	}

	if score := pair(rec, overtimeKey); score != nil {
		out = append(out, Descriptor{
			Key:             overtimeKey,
			Kind:            KindOvertime,
			Label:           labelOr(rec.Periods, overtimeKey, defaultOTLabel),
			Score:           score,
			DefaultDuration: clone(rec.DefaultOvertimeLength),
			StoppageTime:    overtimeStoppage(rec.Time, count),
		})
	}

	if score := pair(rec, penaltiesKey); score != nil {
		out = append(out, Descriptor{
			Key:   penaltiesKey,
			Kind:  KindPenalties,
			Label: labelOr(rec.Periods, penaltiesKey, defaultPensLabel),
			Score: score,
		})
	}

	return Periods{DefaultCount: count, Periods: out}, true
}

func periodKey(k int) string { return "period" + strconv.Itoa(k) }

func pair(rec model.RawEventRecord, key string) *model.ScorePair {
	p, ok := model.PairAt(rec.HomeScore, rec.AwayScore, key)
	if !ok {
		return nil
	}
	return &p
}

// clone keeps descriptors from aliasing the record's fields.
func clone(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func lookup(m model.ScoreMap, key string) *int {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}

func label(m model.LabelMap, key string) *string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}

func labelOr(m model.LabelMap, key, fallback string) *string {
	if v := label(m, key); v != nil {
		return v
	}
	return &fallback
}

func tiebreakLabel(m model.LabelMap, k int, key string) *string {
	if v := m[key]; v != "" {
		return &v
	}
	parent := m[periodKey(k)]
	if parent == "" {
		return nil
	}
	s := parent + tiebreakLabelTail
	return &s
}

// overtimeStoppage collects injuryTime<N> values with N beyond the declared
// count, ordered by N.
func overtimeStoppage(times model.ScoreMap, count int) []int {
	type indexed struct{ n, v int }
	var found []indexed
	for key, v := range times {
		suffix, ok := strings.CutPrefix(key, injuryTimePrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n <= count {
			continue
		}
		found = append(found, indexed{n: n, v: v})
	}
	if len(found) == 0 {
		return nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	out := make([]int, len(found))
	for i, f := range found {
		out[i] = f.v
	}
	return out
}
