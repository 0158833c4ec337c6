package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	decoder := json.NewDecoder(buf)
	for decoder.More() {
		var record map[string]any
		if err := decoder.Decode(&record); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		records = append(records, record)
	}
	return records
}

func TestWithComponentAndTicketRef(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), NewLogger(&buf, "info", "json"))

	deskCtx := WithTicketRef(WithComponent(ctx, "usecase.desk"), "#0042")
	Info(deskCtx, "ticket assigned")
	Info(WithComponent(deskCtx, "usecase.report"), "report cached")
	Info(ctx, "plain")

	records := decodeRecords(t, &buf)
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0]["component"] != "usecase.desk" || records[0]["ticket_ref"] != "#0042" {
		t.Fatalf("first record = %v", records[0])
	}
	if records[1]["component"] != "usecase.report" || records[1]["ticket_ref"] != "#0042" {
		t.Fatalf("second record = %v", records[1])
	}
	if _, ok := records[2]["component"]; ok {
		t.Fatalf("parent context picked up child attrs: %v", records[2])
	}
}

func TestWithComponentIgnoresEmptyName(t *testing.T) {
	ctx := context.Background()
	if got := WithComponent(ctx, ""); got != ctx {
		t.Fatalf("WithComponent(\"\") returned a new context")
	}
	if got := WithTicketRef(ctx, ""); got != ctx {
		t.Fatalf("WithTicketRef(\"\") returned a new context")
	}
}

func TestSiblingContextsDoNotShareAttrs(t *testing.T) {
	var buf bytes.Buffer
	root := WithAttrs(WithLogger(context.Background(), NewLogger(&buf, "info", "json")),
		slog.String("request_id", "r-1"),
		slog.String("command", "helpdesk ticket"),
	)

	left := WithComponent(root, "usecase.knowledge")
	right := WithAttrs(root, slog.String("command", "helpdesk kb"))
	Info(left, "left")
	Info(right, "right")

	records := decodeRecords(t, &buf)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["command"] != "helpdesk ticket" || records[0]["component"] != "usecase.knowledge" {
		t.Fatalf("left record = %v", records[0])
	}
	if records[1]["command"] != "helpdesk kb" || records[1]["request_id"] != "r-1" {
		t.Fatalf("right record = %v", records[1])
	}
	if _, ok := records[1]["component"]; ok {
		t.Fatalf("right record picked up sibling attrs: %v", records[1])
	}
}

func TestLoggerFallsBackWithoutContextLogger(t *testing.T) {
	if Logger(context.Background()) == nil {
		t.Fatal("Logger() = nil")
	}
	if Logger(context.Background()) != Logger(context.TODO()) {
		t.Fatal("fallback logger should be shared")
	}
}
