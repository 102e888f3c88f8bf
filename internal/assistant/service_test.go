package assistant

import (
	"testing"
)

func TestParseReplyPlainJSON(t *testing.T) {
	reply, err := parseReply(`{"textResponse": "Added a cake tasting task.", "updatedRoadmap": [{"id": "phase_1", "title": "Tastings", "tasks": [{"id": null, "title": "Book cake tasting"}]}]}`)
	if err != nil {
		t.Fatalf("parseReply() error = %v", err)
	}
	if reply.TextResponse != "Added a cake tasting task." {
		t.Errorf("textResponse = %q", reply.TextResponse)
	}
	if len(reply.UpdatedRoadmap) != 1 {
		t.Fatalf("expected 1 phase, got %d", len(reply.UpdatedRoadmap))
	}
	phase := reply.UpdatedRoadmap[0]
	if phase.ID == nil || *phase.ID != "phase_1" {
		t.Errorf("phase id = %v, want phase_1", phase.ID)
	}
	if len(phase.Tasks) != 1 || phase.Tasks[0].ID != nil {
		t.Errorf("new task should have nil id: %+v", phase.Tasks)
	}
}

func TestParseReplyWithFences(t *testing.T) {
	reply, err := parseReply("```json\n{\"textResponse\": \"Done.\"}\n```")
	if err != nil {
		t.Fatalf("parseReply() error = %v", err)
	}
	if reply.TextResponse != "Done." {
		t.Errorf("textResponse = %q", reply.TextResponse)
	}
	if reply.UpdatedRoadmap != nil {
		t.Errorf("expected nil roadmap, got %+v", reply.UpdatedRoadmap)
	}
}

func TestParseReplyEmbeddedJSON(t *testing.T) {
	reply, err := parseReply("Here is the result:\n{\"textResponse\": \"Renamed the phase.\"}")
	if err != nil {
		t.Fatalf("parseReply() error = %v", err)
	}
	if reply.TextResponse != "Renamed the phase." {
		t.Errorf("textResponse = %q", reply.TextResponse)
	}
}

func TestParseReplyProseFallback(t *testing.T) {
	reply, err := parseReply("A typical wedding budget allocates about half to the venue and catering.")
	if err != nil {
		t.Fatalf("parseReply() error = %v", err)
	}
	if reply.TextResponse == "" {
		t.Error("expected prose fallback")
	}
	if reply.UpdatedRoadmap != nil {
		t.Error("prose fallback should not carry a roadmap")
	}
}

func TestParseReplyEmpty(t *testing.T) {
	if _, err := parseReply("   "); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestIsConfigured(t *testing.T) {
	if New("key", "").IsConfigured() {
		t.Error("empty model should be unconfigured")
	}
	if New("", "claude-sonnet-4-5").IsConfigured() {
		t.Error("empty api key should be unconfigured")
	}
	if !New("key", "claude-sonnet-4-5").IsConfigured() {
		t.Error("expected configured service")
	}
}
