// Package model contains the upstream record shapes and the small value types
// shared by the transport, walker, periods and incident packages.
package model

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Side identifies which team an incident or score belongs to.
type Side string

const (
	SideUnknown Side = ""
	SideHome    Side = "home"
	SideAway    Side = "away"
)

// Outcome is the final result of an event from the home side's perspective.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

var outcomeByWinnerCode = map[int]Outcome{
	1: OutcomeHome,
	2: OutcomeAway,
	3: OutcomeDraw,
}

// ScorePair is a home/away score. It is either complete or absent.
type ScorePair struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// ScoreMap is a per-side map of period identifiers to integer values, as
// found under homeScore, awayScore and time. Non-integer values are dropped
// while decoding so one odd key never fails the whole record.
type ScoreMap map[string]int

// UnmarshalJSON implements json.Unmarshaler.
func (m *ScoreMap) UnmarshalJSON(data []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ScoreMap, len(raw))
	for k, v := range raw {
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			continue
		}
		out[k] = n
	}
	*m = out
	return nil
}

// PairAt returns the score pair stored under key when both sides carry it.
func PairAt(home, away ScoreMap, key string) (ScorePair, bool) {
	h, okH := home[key]
	a, okA := away[key]
	if !okH || !okA {
		return ScorePair{}, false
	}
	return ScorePair{Home: h, Away: a}, true
}

// LabelMap maps period identifiers to display labels. Non-string values are
// dropped while decoding.
type LabelMap map[string]string

// UnmarshalJSON implements json.Unmarshaler.
func (m *LabelMap) UnmarshalJSON(data []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(LabelMap, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		out[k] = s
	}
	*m = out
	return nil
}

// TeamRef is the subset of an upstream team object carried on event records.
type TeamRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Slug      string `json:"slug,omitempty"`
}

// TournamentRef is the subset of an upstream tournament object.
type TournamentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// EventStatus is the upstream status block of an event.
type EventStatus struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// RawEventRecord is one event as returned by listing and detail endpoints.
// Optional scalars are pointers so a missing key is distinguishable from zero.
type RawEventRecord struct {
	ID                    int64          `json:"id"`
	Slug                  string         `json:"slug,omitempty"`
	StartTimestamp        *int64         `json:"startTimestamp,omitempty"`
	Status                *EventStatus   `json:"status,omitempty"`
	Tournament            *TournamentRef `json:"tournament,omitempty"`
	HomeTeam              *TeamRef       `json:"homeTeam,omitempty"`
	AwayTeam              *TeamRef       `json:"awayTeam,omitempty"`
	HomeScore             ScoreMap       `json:"homeScore,omitempty"`
	AwayScore             ScoreMap       `json:"awayScore,omitempty"`
	Time                  ScoreMap       `json:"time,omitempty"`
	Periods               LabelMap       `json:"periods,omitempty"`
	DefaultPeriodCount    *int           `json:"defaultPeriodCount,omitempty"`
	DefaultPeriodLength   *int           `json:"defaultPeriodLength,omitempty"`
	DefaultOvertimeLength *int           `json:"defaultOvertimeLength,omitempty"`
	WinnerCode            *int           `json:"winnerCode,omitempty"`
}

// StartTime returns the event's start in UTC, if the record carries one.
func (r RawEventRecord) StartTime() (time.Time, bool) {
	if r.StartTimestamp == nil {
		return time.Time{}, false
	}
	return FromUnix(*r.StartTimestamp), true
}

// Outcome maps winnerCode to an Outcome. Unknown or missing codes report false.
func (r RawEventRecord) Outcome() (Outcome, bool) {
	if r.WinnerCode == nil {
		return "", false
	}
	o, ok := outcomeByWinnerCode[*r.WinnerCode]
	return o, ok
}

// DisplayScore returns the score shown to users, when both sides have one.
func (r RawEventRecord) DisplayScore() *ScorePair {
	p, ok := PairAt(r.HomeScore, r.AwayScore, "display")
	if !ok {
		return nil
	}
	return &p
}

// EventSummary is an event record enriched with its derived result, as
// served by listings.
type EventSummary struct {
	RawEventRecord
	Outcome      Outcome    `json:"outcome,omitempty"`
	DisplayScore *ScorePair `json:"displayScore,omitempty"`
}

// Summarize derives the outcome and display score of each record, keeping
// order. The result is never nil.
func Summarize(recs []RawEventRecord) []EventSummary {
	out := make([]EventSummary, 0, len(recs))
	for _, r := range recs {
		s := EventSummary{RawEventRecord: r, DisplayScore: r.DisplayScore()}
		if o, ok := r.Outcome(); ok {
			s.Outcome = o
		}
		out = append(out, s)
	}
	return out
}

// EventStart is RawEventRecord.StartTime as a plain function, suitable as a
// walker time key.
func EventStart(r RawEventRecord) (time.Time, bool) {
	return r.StartTime()
}

// FromUnix converts upstream second timestamps to UTC.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// PageResult is one page of a paginated listing.
type PageResult[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"hasMore"`
}

// EventPage is the upstream wire shape of an event listing page.
type EventPage struct {
	Events      []RawEventRecord `json:"events"`
	HasNextPage bool             `json:"hasNextPage"`
}

// Result converts the wire page to a PageResult.
func (p EventPage) Result() PageResult[RawEventRecord] {
	return PageResult[RawEventRecord]{Items: p.Events, HasMore: p.HasNextPage}
}
