package incident

import (
	"context"

	"github.com/JolanDUBOIS/sport-index/internal/domain/model"
	"github.com/JolanDUBOIS/sport-index/pkg/logger"
	"github.com/JolanDUBOIS/sport-index/pkg/metrics"
)

type extractor func(raw model.RawIncident) Incident

var extractors = map[string]extractor{
	TypeGoal:            extractGoal,
	TypePenalty:         extractPenalty,
	TypePenaltyShootout: extractPenaltyShootout,
	TypeCard:            extractCard,
	TypePeriod:          extractPeriod,
	TypeVarDecision:     extractVarDecision,
	TypeSubstitution:    extractSubstitution,
	TypeInjuryTime:      extractStoppageTime,
}

// Dispatcher classifies raw incidents. It is stateless apart from its logger.
type Dispatcher struct {
	logger logger.Logger
}

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher with configuration options.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: logger.NamedOrNop("incident")}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Classify returns the variant for raw, or Unknown with a warning when the
// discriminator is not recognised.
func (d *Dispatcher) Classify(ctx context.Context, raw model.RawIncident) Incident {
	extract, ok := extractors[raw.IncidentType]
	if !ok {
		metrics.RecordIncidentUnknown()
		d.logger.Warn(ctx, "Unknown incident type, skipping", logger.String("incident_type", raw.IncidentType))
		return Unknown{IncidentType: raw.IncidentType, Raw: raw}
	}
	metrics.RecordIncidentClassified(raw.IncidentType)
	return extract(raw)
}

// ClassifyAll classifies raws in order. Unknown incidents are dropped unless
// keepUnknown is set.
func (d *Dispatcher) ClassifyAll(ctx context.Context, raws []model.RawIncident, keepUnknown bool) []Incident {
	out := make([]Incident, 0, len(raws))
	for _, raw := range raws {
		inc := d.Classify(ctx, raw)
		if _, unknown := inc.(Unknown); unknown && !keepUnknown {
			continue
		}
		out = append(out, inc)
	}
	return out
}

func extractGoal(raw model.RawIncident) Incident {
	assist := raw.Assist
	if !model.Populated(assist) {
		assist = raw.Assist1
	}
	return Goal{
		IncidentType: TypeGoal,
		ID:           raw.ID,
		Time:         raw.Time,
		Side:         raw.Side(),
		Score:        raw.Score(),
		Scorer:       ref(raw.Player),
		Assist:       ref(assist),
		ExtraTime:    raw.AddedTime,
		Kind:         raw.IncidentClass,
	}
}

func extractPenalty(raw model.RawIncident) Incident {
	return Penalty{
		IncidentType: TypePenalty,
		ID:           raw.ID,
		Time:         raw.Time,
		Side:         raw.Side(),
		Shooter:      ref(raw.Player),
		ExtraTime:    raw.AddedTime,
		Description:  raw.Description,
		Kind:         raw.IncidentClass,
	}
}

func extractPenaltyShootout(raw model.RawIncident) Incident {
	return PenaltyShootout{
		IncidentType: TypePenaltyShootout,
		ID:           raw.ID,
		Side:         raw.Side(),
		Score:        raw.Score(),
		Shooter:      ref(raw.Player),
		Kind:         raw.IncidentClass,
	}
}

func extractCard(raw model.RawIncident) Incident {
	c := Card{
		IncidentType:  TypeCard,
		ID:            raw.ID,
		Time:          raw.Time,
		Side:          raw.Side(),
		Recipient:     ref(raw.Manager),
		RecipientType: RecipientManager,
		Reason:        raw.Reason,
		ExtraTime:     raw.AddedTime,
		Kind:          raw.IncidentClass,
	}
	if model.Populated(raw.Player) {
		c.Recipient = raw.Player
		c.RecipientType = RecipientPlayer
	}
	if raw.Rescinded != nil {
		c.Rescinded = *raw.Rescinded
	}
	return c
}

func extractPeriod(raw model.RawIncident) Incident {
	t := raw.Time
	if t != nil && *t == periodNoTime {
		t = nil
	}
	return PeriodBoundary{
		IncidentType: TypePeriod,
		Time:         t,
		Score:        raw.Score(),
		Label:        raw.Text,
	}
}

func extractVarDecision(raw model.RawIncident) Incident {
	return VarDecision{
		IncidentType: TypeVarDecision,
		ID:           raw.ID,
		Time:         raw.Time,
		Side:         raw.Side(),
		ExtraTime:    raw.AddedTime,
		Description:  raw.Text,
		Kind:         raw.IncidentClass,
		Confirmed:    raw.Confirmed,
	}
}

func extractSubstitution(raw model.RawIncident) Incident {
	return Substitution{
		IncidentType: TypeSubstitution,
		ID:           raw.ID,
		Time:         raw.Time,
		Side:         raw.Side(),
		PlayerIn:     ref(raw.PlayerIn),
		PlayerOut:    ref(raw.PlayerOut),
		ExtraTime:    raw.AddedTime,
		Kind:         raw.IncidentClass,
	}
}

func extractStoppageTime(raw model.RawIncident) Incident {
	return StoppageTime{
		IncidentType: TypeInjuryTime,
		Time:         raw.Time,
		AddedTime:    raw.Length,
	}
}

// ref normalises an absent or null reference to nil.
func ref(r model.PersonRef) model.PersonRef {
	if !model.Populated(r) {
		return nil
	}
	return r
}
