package migration

import (
	"testing"
	"time"
)

func TestParseDiscordID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "123456789012345678", want: 123456789012345678, wantOK: true},
		{in: "42", want: 42, wantOK: true},
		{in: "", wantOK: false},
		{in: "not-a-number", wantOK: false},
		{in: "-7", wantOK: false},
		{in: "0", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseDiscordID(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseDiscordID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRosterEntryCheckoutTime(t *testing.T) {
	ms := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	entry := MongoRosterEntry{CheckoutMs: ms}

	got := entry.CheckoutTime()
	if got == nil {
		t.Fatal("expected a checkout time")
	}
	if !got.Equal(time.UnixMilli(ms)) {
		t.Errorf("CheckoutTime() = %v", got)
	}

	if (MongoRosterEntry{}).CheckoutTime() != nil {
		t.Error("zero timestamp should mean no checkout")
	}
	if (MongoRosterEntry{CheckoutMs: -1}).CheckoutTime() != nil {
		t.Error("negative timestamp should mean no checkout")
	}
}

func TestStatsTable(t *testing.T) {
	var stats MigrationStats

	ts := stats.table("users")
	ts.Processed++
	ts.Inserted++

	again := stats.table("users")
	if again.Processed != 1 || again.Inserted != 1 {
		t.Errorf("table() did not return the same counters: %+v", again)
	}
	if len(stats.Tables) != 1 {
		t.Errorf("got %d tables, want 1", len(stats.Tables))
	}
}
