package model

import stdjson "encoding/json"

// PersonRef is an upstream player or manager object, passed through untouched.
// It is the standard library raw type so both encoders emit it verbatim.
type PersonRef = stdjson.RawMessage

// RawIncident is one element of an event's incidents listing. Every field
// but the discriminator is optional and only meaningful to some variants.
type RawIncident struct {
	IncidentType  string    `json:"incidentType"`
	ID            *int64    `json:"id,omitempty"`
	Time          *int      `json:"time,omitempty"`
	AddedTime     *int      `json:"addedTime,omitempty"`
	Length        *int      `json:"length,omitempty"`
	IsHome        *bool     `json:"isHome,omitempty"`
	HomeScore     *int      `json:"homeScore,omitempty"`
	AwayScore     *int      `json:"awayScore,omitempty"`
	IncidentClass *string   `json:"incidentClass,omitempty"`
	Text          *string   `json:"text,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Reason        *string   `json:"reason,omitempty"`
	Rescinded     *bool     `json:"rescinded,omitempty"`
	Confirmed     *bool     `json:"confirmed,omitempty"`
	Player        PersonRef `json:"player,omitempty"`
	Assist        PersonRef `json:"assist,omitempty"`
	Assist1       PersonRef `json:"assist1,omitempty"`
	Manager       PersonRef `json:"manager,omitempty"`
	PlayerIn      PersonRef `json:"playerIn,omitempty"`
	PlayerOut     PersonRef `json:"playerOut,omitempty"`
}

// Side derives the incident side from isHome. A missing flag is SideUnknown.
func (r RawIncident) Side() Side {
	if r.IsHome == nil {
		return SideUnknown
	}
	if *r.IsHome {
		return SideHome
	}
	return SideAway
}

// Score returns the running score when both counts are present.
func (r RawIncident) Score() *ScorePair {
	if r.HomeScore == nil || r.AwayScore == nil {
		return nil
	}
	return &ScorePair{Home: *r.HomeScore, Away: *r.AwayScore}
}

// IncidentsResponse is the wire shape of an event's incidents listing.
type IncidentsResponse struct {
	Incidents []RawIncident `json:"incidents"`
}

// EventResponse is the wire shape of an event detail.
type EventResponse struct {
	Event RawEventRecord `json:"event"`
}

// Populated reports whether an opaque reference carries a real object.
func Populated(ref PersonRef) bool {
	s := string(ref)
	return len(ref) > 0 && s != "null" && s != "{}" && s != `""` && s != "false"
}
