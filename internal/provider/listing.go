package provider

import "github.com/JolanDUBOIS/sport-index/internal/endpoints"

// SubjectKind is the kind of entity a listing belongs to.
type SubjectKind string

const (
	KindTeam       SubjectKind = "team"
	KindPlayer     SubjectKind = "player"
	KindManager    SubjectKind = "manager"
	KindReferee    SubjectKind = "referee"
	KindVenue      SubjectKind = "venue"
	KindTournament SubjectKind = "tournament"
)

// Subject identifies whose events are listed. SeasonID is only used by
// tournaments.
type Subject struct {
	Kind     SubjectKind
	ID       string
	SeasonID string
}

// Team, Player, Manager, Referee, Venue and Tournament build subjects.
func Team(id string) Subject    { return Subject{Kind: KindTeam, ID: id} }
func Player(id string) Subject  { return Subject{Kind: KindPlayer, ID: id} }
func Manager(id string) Subject { return Subject{Kind: KindManager, ID: id} }
func Referee(id string) Subject { return Subject{Kind: KindReferee, ID: id} }
func Venue(id string) Subject   { return Subject{Kind: KindVenue, ID: id} }
func Tournament(id, seasonID string) Subject {
	return Subject{Kind: KindTournament, ID: id, SeasonID: seasonID}
}

// Listing describes one paginated upstream event listing.
type Listing struct {
	Op        string
	Params    endpoints.Params
	FirstPage int
	// Ascending is true for listings served oldest first.
	Ascending bool
}

// Results returns the past-events listing of s, newest first.
func (s Subject) Results() (Listing, bool) {
	switch s.Kind {
	case KindTeam:
		return Listing{Op: endpoints.OpTeamResults, Params: endpoints.Params{"team_id": s.ID}}, true
	case KindPlayer:
		return Listing{Op: endpoints.OpPlayerResults, Params: endpoints.Params{"player_id": s.ID}}, true
	case KindManager:
		return Listing{Op: endpoints.OpManagerResults, Params: endpoints.Params{"manager_id": s.ID}}, true
	case KindReferee:
		return Listing{Op: endpoints.OpRefereeResults, Params: endpoints.Params{"referee_id": s.ID}}, true
	case KindVenue:
		return Listing{Op: endpoints.OpVenueResults, Params: endpoints.Params{"venue_id": s.ID}, FirstPage: 1}, true
	case KindTournament:
		return Listing{Op: endpoints.OpUniqueTournamentResults, Params: s.tournamentParams()}, true
	default:
		return Listing{}, false
	}
}

// Fixtures returns the upcoming-events listing of s, oldest first. People
// have no fixtures listing upstream.
func (s Subject) Fixtures() (Listing, bool) {
	switch s.Kind {
	case KindTeam:
		return Listing{Op: endpoints.OpTeamFixtures, Params: endpoints.Params{"team_id": s.ID}, Ascending: true}, true
	case KindVenue:
		return Listing{Op: endpoints.OpVenueFixtures, Params: endpoints.Params{"venue_id": s.ID}, FirstPage: 1, Ascending: true}, true
	case KindTournament:
		return Listing{Op: endpoints.OpUniqueTournamentFixtures, Params: s.tournamentParams(), Ascending: true}, true
	default:
		return Listing{}, false
	}
}

func (s Subject) tournamentParams() endpoints.Params {
	return endpoints.Params{"unique_tournament_id": s.ID, "season_id": s.SeasonID}
}
