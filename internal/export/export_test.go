package export

import (
	"strings"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alex & Sam's Wedding", "Alex--Sams-Wedding"},
		{"", "wedding"},
		{"///", "wedding"},
		{"plain", "plain"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "abc"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"100%", "100%25"},
	}
	for _, tt := range tests {
		if got := percentEncodeForDataURL(tt.in); got != tt.want {
			t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderItineraryHTML(t *testing.T) {
	day := time.Date(2026, 6, 20, 14, 0, 0, 0, time.UTC)
	html, err := RenderItineraryHTML(ItineraryData{
		Project: ProjectInfo{Title: "Alex & Sam's Wedding", Partner1Name: "Alex", Partner2Name: "Sam", Location: "Lisbon"},
		Days: []ItineraryDay{
			{Date: day, Events: []EventInfo{
				{Title: "Ceremony", TimeOfDay: "14:00", Location: "Chapel", Description: "Exchange of vows"},
				{Title: "Reception", TimeOfDay: "18:00"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Alex &amp; Sam", "Ceremony", "Chapel", "Saturday, June 20, 2026", "Reception"} {
		if !strings.Contains(html, want) {
			t.Errorf("itinerary html missing %q", want)
		}
	}
}

func TestRenderRoadmapHTML(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	html, err := RenderRoadmapHTML(RoadmapData{
		Project: ProjectInfo{Title: "Alex & Sam's Wedding"},
		Phases: []PhaseInfo{
			{Title: "Setting the Coordinates", Tasks: []TaskInfo{
				{Title: "Book venue", IsCompleted: true},
				{Title: "Hire photographer", Deadline: &deadline, AssignedTo: "Jamie"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Setting the Coordinates", "Book venue", "Hire photographer", "Mar 1, 2026", "Jamie"} {
		if !strings.Contains(html, want) {
			t.Errorf("roadmap html missing %q", want)
		}
	}
}

func TestGroupByDay(t *testing.T) {
	d1 := time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 6, 21, 9, 0, 0, 0, time.UTC)
	days := groupByDay([]EventInfo{
		{Title: "Brunch", Date: d1},
		{Title: "Ceremony", Date: d1},
		{Title: "Farewell", Date: d2},
	})
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if len(days[0].Events) != 2 || days[0].Events[0].Title != "Brunch" {
		t.Errorf("day one grouping wrong: %+v", days[0])
	}
	if len(days[1].Events) != 1 || days[1].Events[0].Title != "Farewell" {
		t.Errorf("day two grouping wrong: %+v", days[1])
	}
}
