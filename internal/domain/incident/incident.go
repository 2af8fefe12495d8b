// Package incident classifies raw match incidents into a closed family of
// typed variants keyed by their incidentType discriminator.
package incident

import "github.com/JolanDUBOIS/sport-index/internal/domain/model"

// Discriminator values understood by the dispatcher.
const (
	TypeGoal            = "goal"
	TypePenalty         = "penalty"
	TypePenaltyShootout = "penaltyShootout"
	TypeCard            = "card"
	TypePeriod          = "period"
	TypeVarDecision     = "varDecision"
	TypeSubstitution    = "substitution"
	TypeInjuryTime      = "injuryTime"
)

// periodNoTime is the upstream sentinel for a period boundary with no
// meaningful elapsed time.
const periodNoTime = 999

// Incident is implemented by every variant, Unknown included.
type Incident interface {
	// Type returns the upstream discriminator the incident was built from.
	Type() string
	incident()
}

// RecipientType says who received a card.
type RecipientType string

const (
	RecipientPlayer  RecipientType = "player"
	RecipientManager RecipientType = "manager"
)

// Goal is a scored goal, try or basket.
type Goal struct {
	IncidentType string           `json:"incidentType"`
	ID           *int64           `json:"id,omitempty"`
	Time         *int             `json:"time,omitempty"`
	Side         model.Side       `json:"side,omitempty"`
	Score        *model.ScorePair `json:"score,omitempty"`
	Scorer       model.PersonRef  `json:"scorer,omitempty"`
	Assist       model.PersonRef  `json:"assist,omitempty"`
	ExtraTime    *int             `json:"extraTime,omitempty"`
	Kind         *string          `json:"kind,omitempty"`
}

// Penalty is a missed in-play penalty. Scored ones arrive as goals.
type Penalty struct {
	IncidentType string          `json:"incidentType"`
	ID           *int64          `json:"id,omitempty"`
	Time         *int            `json:"time,omitempty"`
	Side         model.Side      `json:"side,omitempty"`
	Shooter      model.PersonRef `json:"shooter,omitempty"`
	ExtraTime    *int            `json:"extraTime,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Kind         *string         `json:"kind,omitempty"`
}

// PenaltyShootout is one shootout attempt.
type PenaltyShootout struct {
	IncidentType string           `json:"incidentType"`
	ID           *int64           `json:"id,omitempty"`
	Side         model.Side       `json:"side,omitempty"`
	Score        *model.ScorePair `json:"score,omitempty"`
	Shooter      model.PersonRef  `json:"shooter,omitempty"`
	Kind         *string          `json:"kind,omitempty"`
}

// Card is a card shown to a player or a manager. A time of -5 means the
// card was given on the bench.
type Card struct {
	IncidentType  string          `json:"incidentType"`
	ID            *int64          `json:"id,omitempty"`
	Time          *int            `json:"time,omitempty"`
	Side          model.Side      `json:"side,omitempty"`
	Recipient     model.PersonRef `json:"recipient,omitempty"`
	RecipientType RecipientType   `json:"recipientType"`
	Rescinded     bool            `json:"rescinded"`
	Reason        *string         `json:"reason,omitempty"`
	ExtraTime     *int            `json:"extraTime,omitempty"`
	Kind          *string         `json:"kind,omitempty"`
}

// PeriodBoundary marks the end of a period (HT, FT, ...).
type PeriodBoundary struct {
	IncidentType string           `json:"incidentType"`
	Time         *int             `json:"time,omitempty"`
	Score        *model.ScorePair `json:"score,omitempty"`
	Label        *string          `json:"label,omitempty"`
}

// VarDecision is a video review outcome.
type VarDecision struct {
	IncidentType string     `json:"incidentType"`
	ID           *int64     `json:"id,omitempty"`
	Time         *int       `json:"time,omitempty"`
	Side         model.Side `json:"side,omitempty"`
	ExtraTime    *int       `json:"extraTime,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Kind         *string    `json:"kind,omitempty"`
	Confirmed    *bool      `json:"confirmed,omitempty"`
}

// Substitution swaps two players.
type Substitution struct {
	IncidentType string          `json:"incidentType"`
	ID           *int64          `json:"id,omitempty"`
	Time         *int            `json:"time,omitempty"`
	Side         model.Side      `json:"side,omitempty"`
	PlayerIn     model.PersonRef `json:"playerIn,omitempty"`
	PlayerOut    model.PersonRef `json:"playerOut,omitempty"`
	ExtraTime    *int            `json:"extraTime,omitempty"`
	Kind         *string         `json:"kind,omitempty"`
}

// StoppageTime announces added time at the end of a period.
type StoppageTime struct {
	IncidentType string `json:"incidentType"`
	Time         *int   `json:"time,omitempty"`
	AddedTime    *int   `json:"addedTime,omitempty"`
}

// Unknown wraps an incident whose discriminator has no extractor.
type Unknown struct {
	IncidentType string            `json:"incidentType"`
	Raw          model.RawIncident `json:"raw"`
}

func (Goal) Type() string            { return TypeGoal }
func (Penalty) Type() string         { return TypePenalty }
func (PenaltyShootout) Type() string { return TypePenaltyShootout }
func (Card) Type() string            { return TypeCard }
func (PeriodBoundary) Type() string  { return TypePeriod }
func (VarDecision) Type() string     { return TypeVarDecision }
func (Substitution) Type() string    { return TypeSubstitution }
func (StoppageTime) Type() string    { return TypeInjuryTime }
func (u Unknown) Type() string       { return u.IncidentType }

func (Goal) incident()            {}
func (Penalty) incident()         {}
func (PenaltyShootout) incident() {}
func (Card) incident()            {}
func (PeriodBoundary) incident()  {}
func (VarDecision) incident()     {}
func (Substitution) incident()    {}
func (StoppageTime) incident()    {}
func (Unknown) incident()         {}
