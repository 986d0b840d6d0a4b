package mappers

import (
	"reflect"
	"testing"

	"course-feeds/internal/domain"
)

func course(recID, internalID string) domain.Record {
	return domain.Record{
		ID:     recID,
		Fields: domain.Fields{"internal_id": internalID},
	}
}

func TestJoinSessionsImplicitKey(t *testing.T) {
	courses := []domain.Record{course("recC1", "C1")}
	sessions := []domain.Record{
		{ID: "recS1", Fields: domain.Fields{
			"internal_id":   "C1",
			"date_start":    "2024-03-01",
			"hours":         "09:00-17:00",
			"location_name": "Campus Zuid",
		}},
		{ID: "recS2", Fields: domain.Fields{
			// no internal_id: dropped silently
			"date_start": "2024-04-01",
		}},
	}

	joined := JoinSessions(courses, sessions, JoinOptions{})

	blocks := joined.Locations["C1"]
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block under C1, got %d", len(blocks))
	}
	if blocks[0].DateStart != "2024-03-01" || blocks[0].Hours != "09:00-17:00" {
		t.Errorf("Unexpected block: %+v", blocks[0])
	}
	if len(joined.Locations) != 1 {
		t.Errorf("Expected orphan session to be dropped, got %v", joined.Locations)
	}
}

func TestJoinSessionsExplicitLinkFanOut(t *testing.T) {
	courses := []domain.Record{
		course("recC1", "C1"),
		course("recC2", "C2"),
	}
	sessions := []domain.Record{
		{ID: "recS1", Fields: domain.Fields{
			"Course":     []any{"recC1", "recC2"},
			"date_start": "2024-03-01",
		}},
		{ID: "recS2", Fields: domain.Fields{
			"Course":     []any{"recUnknown"},
			"date_start": "2024-04-01",
		}},
		{ID: "recS3", Fields: domain.Fields{
			// scalar link value gets wrapped
			"Course":     "recC2",
			"date_start": "2024-02-01",
		}},
	}

	joined := JoinSessions(courses, sessions, JoinOptions{LinkField: "Course"})

	// linked to two courses: appears under both parents
	if len(joined.Locations["C1"]) != 1 {
		t.Errorf("Expected 1 block under C1, got %d", len(joined.Locations["C1"]))
	}
	if len(joined.Locations["C2"]) != 2 {
		t.Errorf("Expected 2 blocks under C2, got %d", len(joined.Locations["C2"]))
	}

	// unresolvable link: session appears nowhere
	total := 0
	for _, blocks := range joined.Locations {
		total += len(blocks)
	}
	if total != 3 {
		t.Errorf("Expected 3 joined blocks in total, got %d", total)
	}

	// sorted by date_start within the parent
	if joined.Locations["C2"][0].DateStart != "2024-02-01" {
		t.Errorf("Expected C2 blocks sorted by date, got %+v", joined.Locations["C2"])
	}
}

func TestJoinSessionsDropsEmptyBlocks(t *testing.T) {
	courses := []domain.Record{course("recC1", "C1")}
	sessions := []domain.Record{
		{ID: "recS1", Fields: domain.Fields{"internal_id": "C1"}},
	}

	joined := JoinSessions(courses, sessions, JoinOptions{})

	if len(joined.Locations["C1"]) != 0 {
		t.Errorf("Expected all-empty block to be discarded, got %+v", joined.Locations["C1"])
	}
}

func TestJoinSessionsSortsLocations(t *testing.T) {
	courses := []domain.Record{course("recC1", "C1")}
	sessions := []domain.Record{
		{ID: "recS1", Fields: domain.Fields{
			"internal_id": "C1", "date_start": "2024-03-01", "location_name": "Campus Zuid",
		}},
		{ID: "recS2", Fields: domain.Fields{
			"internal_id": "C1", "date_start": "2024-03-01", "location_name": "Campus Noord",
		}},
		{ID: "recS3", Fields: domain.Fields{
			"internal_id": "C1", "date_start": "2024-01-15", "location_name": "Campus Zuid",
		}},
		{ID: "recS4", Fields: domain.Fields{
			// empty date sorts first
			"internal_id": "C1", "location_name": "Online",
		}},
	}

	joined := JoinSessions(courses, sessions, JoinOptions{})

	var got []string
	for _, b := range joined.Locations["C1"] {
		got = append(got, b.DateStart+"|"+b.LocationName)
	}
	expected := []string{
		"|Online",
		"2024-01-15|Campus Zuid",
		"2024-03-01|Campus Noord",
		"2024-03-01|Campus Zuid",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Unexpected sort order: %v", got)
	}
}

func TestJoinSessionsDeadlineFormatting(t *testing.T) {
	courses := []domain.Record{course("recC1", "C1")}
	sessions := []domain.Record{
		{ID: "recS1", Fields: domain.Fields{
			"internal_id":           "C1",
			"date_start":            "2024-03-01",
			"registration_deadline": "2024-02-15T23:59:00.000Z",
		}},
	}

	joined := JoinSessions(courses, sessions, JoinOptions{DeadlineDayMonthYear: true})
	if got := joined.Locations["C1"][0].RegistrationDeadline; got != "15/02/2024" {
		t.Errorf("Expected DD/MM/YYYY deadline, got %q", got)
	}

	joined = JoinSessions(courses, sessions, JoinOptions{})
	if got := joined.Locations["C1"][0].RegistrationDeadline; got != "2024-02-15T23:59:00.000Z" {
		t.Errorf("Expected raw deadline without the option, got %q", got)
	}
}

func TestBuildSessionEvents(t *testing.T) {
	sf := domain.Fields{
		"date_start":    "2024-03-01",
		"date_end":      "2024-03-05",
		"hours":         "09:00-17:00",
		"location_name": "Campus Zuid",
		"location_zip":  "2000",
	}

	events := buildSessionEvents("C1", sf)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	start, end := events[0], events[1]
	if start.SessionID != "C1-start-2024-03-01" {
		t.Errorf("Unexpected start id: %s", start.SessionID)
	}
	if end.SessionID != "C1-end-2024-03-05" {
		t.Errorf("Unexpected end id: %s", end.SessionID)
	}
	if start.StartTime != "09:00" || start.EndTime != "17:00" {
		t.Errorf("Unexpected times: %s-%s", start.StartTime, start.EndTime)
	}
	if start.SessionDescription != "Start 01/03/2024" {
		t.Errorf("Unexpected derived description: %q", start.SessionDescription)
	}
	if end.Date != "2024-03-05" {
		t.Errorf("Unexpected end date: %s", end.Date)
	}
}

func TestBuildSessionEventsOneDay(t *testing.T) {
	// date_end empty: the end event falls back to date_start
	sf := domain.Fields{
		"date_start": "2024-03-01",
		"hours":      "09:00-17:00",
	}

	events := buildSessionEvents("C1", sf)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].SessionID != "C1-start-2024-03-01" || events[1].SessionID != "C1-end-2024-03-01" {
		t.Errorf("Unexpected ids: %s, %s", events[0].SessionID, events[1].SessionID)
	}
}

func TestBuildSessionEventsNoDates(t *testing.T) {
	if events := buildSessionEvents("C1", domain.Fields{"hours": "09:00-17:00"}); len(events) != 0 {
		t.Errorf("Expected no events without dates, got %d", len(events))
	}
}

func TestJoinSessionsDedupesEvents(t *testing.T) {
	courses := []domain.Record{course("recC1", "C1")}
	// two rows describing the same course day produce identical sessionIds
	sessions := []domain.Record{
		{ID: "recS1", Fields: domain.Fields{
			"Course": []any{"recC1"}, "date_start": "2024-03-01", "location_name": "Campus Zuid",
		}},
		{ID: "recS2", Fields: domain.Fields{
			"Course": []any{"recC1"}, "date_start": "2024-03-01", "location_name": "Campus Noord",
		}},
	}

	joined := JoinSessions(courses, sessions, JoinOptions{LinkField: "Course", WithEvents: true})

	events := joined.Events["C1"]
	if len(events) != 2 {
		t.Fatalf("Expected 2 deduplicated events (start+end), got %d", len(events))
	}
	seen := map[string]bool{}
	for _, ev := range events {
		if seen[ev.SessionID] {
			t.Errorf("Duplicate sessionId survived: %s", ev.SessionID)
		}
		seen[ev.SessionID] = true
	}
}
