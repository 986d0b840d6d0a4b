package mappers

import (
	"sort"

	"course-feeds/internal/domain"
)

// LocationDate is the normalized projection of one session shared by both
// partner schemas. Optional fields are omitted when empty.
type LocationDate struct {
	DateStart       string `json:"date_start"`
	DateEnd         string `json:"date_end"`
	Hours           string `json:"hours"`
	LocationName    string `json:"location_name"`
	LocationAddress string `json:"location_address"`
	LocationZip     string `json:"location_zip"`

	LocationCity         string `json:"location_city,omitempty"`
	MaximumParticipants  string `json:"maximum_participants,omitempty"`
	RegistrationDeadline string `json:"registration_deadline,omitempty"`
}

// SessionEvent is the Smartlions-only start/end event derived from one
// session record.
type SessionEvent struct {
	Date               string `json:"date"`
	SessionDescription string `json:"sessionDescription"`
	SessionID          string `json:"sessionId"`
	LocationName       string `json:"locationName"`
	Address            string `json:"address"`
	ZipCode            string `json:"zipCode"`
	City               string `json:"city"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
}

// JoinOptions selects the join strategy and the partner-specific shaping.
type JoinOptions struct {
	// LinkField enables the explicit link join: session link-field values
	// are resolved to internal_ids through the fetched courses. When empty,
	// sessions are grouped by their own internal_id field.
	LinkField string

	// DeadlineDayMonthYear reformats registration_deadline to DD/MM/YYYY
	// (Jobat's display convention).
	DeadlineDayMonthYear bool

	// WithEvents derives start/end SessionEvents per session (Smartlions).
	WithEvents bool
}

// JoinedSessions holds the per-course child lists, keyed by internal_id.
type JoinedSessions struct {
	Locations map[string][]LocationDate
	Events    map[string][]SessionEvent
}

// JoinSessions groups session records under their parent courses, builds the
// normalized blocks and sorts them deterministically. Sessions without a
// resolvable parent are dropped silently; that is expected for drafts and
// orphaned rows, not an error.
func JoinSessions(courses, sessions []domain.Record, opts JoinOptions) JoinedSessions {
	out := JoinedSessions{
		Locations: map[string][]LocationDate{},
		Events:    map[string][]SessionEvent{},
	}

	// Airtable record id -> internal_id, for the explicit link join.
	var byRecordID map[string]string
	if opts.LinkField != "" {
		byRecordID = make(map[string]string, len(courses))
		for _, cr := range courses {
			if iid := cr.Fields.Str("internal_id"); iid != "" {
				byRecordID[cr.ID] = iid
			}
		}
	}

	for _, sr := range sessions {
		sf := sr.Fields

		var parents []string
		if opts.LinkField == "" {
			if iid := sf.Str("internal_id"); iid != "" {
				parents = []string{iid}
			}
		} else {
			// A session linked to multiple courses fans out to each parent.
			for _, recID := range sf.List(opts.LinkField) {
				if iid := byRecordID[recID]; iid != "" {
					parents = append(parents, iid)
				}
			}
		}

		block := buildLocationDate(sf, opts)

		for _, iid := range parents {
			if block != (LocationDate{}) {
				out.Locations[iid] = append(out.Locations[iid], block)
			}
			if opts.WithEvents {
				out.Events[iid] = append(out.Events[iid], buildSessionEvents(iid, sf)...)
			}
		}
	}

	for iid := range out.Locations {
		sortLocations(out.Locations[iid])
	}
	for iid := range out.Events {
		out.Events[iid] = sortAndDedupeEvents(out.Events[iid])
	}

	return out
}

func buildLocationDate(sf domain.Fields, opts JoinOptions) LocationDate {
	deadline := sf.Str("registration_deadline")
	if opts.DeadlineDayMonthYear {
		deadline = dayMonthYear(deadline)
	}

	return LocationDate{
		DateStart:       sf.Str("date_start"),
		DateEnd:         sf.Str("date_end"),
		Hours:           sf.Str("hours"),
		LocationName:    sf.Str("location_name"),
		LocationAddress: sf.Str("location_address"),
		LocationZip:     sf.Str("location_zip"),

		LocationCity:         sf.Str("location_city"),
		MaximumParticipants:  sf.Str("maximum_participants"),
		RegistrationDeadline: deadline,
	}
}

// buildSessionEvents derives up to two events from one session: a start
// event on date_start and an end event on date_end (falling back to
// date_start for one-day sessions). Ids are synthetic and deterministic so
// the feed stays diffable between runs.
func buildSessionEvents(iid string, sf domain.Fields) []SessionEvent {
	dateStart := sf.Str("date_start")
	dateEnd := sf.Str("date_end")
	if dateEnd == "" {
		dateEnd = dateStart
	}

	startTime, endTime := extractTimeRange(sf.Str("hours"))
	desc := sf.Str("sessionDescription")

	base := SessionEvent{
		LocationName: sf.Str("location_name"),
		Address:      sf.Str("location_address"),
		ZipCode:      sf.Str("location_zip"),
		City:         sf.Str("location_city"),
		StartTime:    startTime,
		EndTime:      endTime,
	}

	var events []SessionEvent
	if dateStart != "" {
		ev := base
		ev.Date = dateStart
		ev.SessionID = iid + "-start-" + dateStart
		ev.SessionDescription = desc
		if ev.SessionDescription == "" {
			ev.SessionDescription = "Start " + dayMonthYear(dateStart)
		}
		events = append(events, ev)
	}
	if dateEnd != "" {
		ev := base
		ev.Date = dateEnd
		ev.SessionID = iid + "-end-" + dateEnd
		ev.SessionDescription = desc
		if ev.SessionDescription == "" {
			ev.SessionDescription = "Einde " + dayMonthYear(dateEnd)
		}
		events = append(events, ev)
	}
	return events
}

func sortLocations(blocks []LocationDate) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.DateStart != b.DateStart {
			return a.DateStart < b.DateStart
		}
		if a.LocationName != b.LocationName {
			return a.LocationName < b.LocationName
		}
		return a.Hours < b.Hours
	})
}

// sortAndDedupeEvents sorts by (date, sessionDescription) and then keeps the
// first occurrence per sessionId. Duplicate ids happen when two session rows
// describe the same course day.
func sortAndDedupeEvents(events []SessionEvent) []SessionEvent {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.SessionDescription < b.SessionDescription
	})

	seen := make(map[string]bool, len(events))
	out := events[:0]
	for _, ev := range events {
		if seen[ev.SessionID] {
			continue
		}
		seen[ev.SessionID] = true
		out = append(out, ev)
	}
	return out
}
