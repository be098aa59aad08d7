package services

import "testing"

func TestParseSetDescriptor(t *testing.T) {
	data := []byte(`
name = "Shadows of Mirkwood"

[[scenarios]]
title = "The Hunt for Gollum"
number = 1

[[scenarios]]
title = "Conflict at the Carrock"
number = 2
`)

	desc, err := ParseSetDescriptor(data)
	if err != nil {
		t.Fatalf("ParseSetDescriptor() error = %v", err)
	}
	if desc.Name != "Shadows of Mirkwood" {
		t.Errorf("Name = %q", desc.Name)
	}
	if len(desc.Scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(desc.Scenarios))
	}
	if desc.Scenarios[1].Title != "Conflict at the Carrock" || desc.Scenarios[1].Number != 2 {
		t.Errorf("unexpected second scenario: %+v", desc.Scenarios[1])
	}
}

func TestParseSetDescriptorRejectsMissingName(t *testing.T) {
	if _, err := ParseSetDescriptor([]byte(`[[scenarios]]` + "\n" + `title = "Orphan"`)); err == nil {
		t.Fatal("expected an error for a descriptor without a name")
	}
}

func TestParseChallengeBatch(t *testing.T) {
	data := []byte(`
code_prefix = "PTM"

[[challenge]]
name = "No casualties"
description = "Win with no characters destroyed"
scenario = "Passage Through Mirkwood"
attributes = ["Standard"]

[[challenge]]
name = "Speed run"
description = "Win by round four"
scenario = "Passage Through Mirkwood"
attributes = ["Hunt", "Expert"]
`)

	batch, err := ParseChallengeBatch(data)
	if err != nil {
		t.Fatalf("ParseChallengeBatch() error = %v", err)
	}
	if batch.CodePrefix != "PTM" {
		t.Errorf("CodePrefix = %q", batch.CodePrefix)
	}
	if len(batch.Challenge) != 2 {
		t.Fatalf("got %d challenges, want 2", len(batch.Challenge))
	}
	if batch.Challenge[1].Attributes[1] != "Expert" {
		t.Errorf("unexpected attributes: %v", batch.Challenge[1].Attributes)
	}
}

func TestParseChallengeBatchRejectsMissingPrefix(t *testing.T) {
	if _, err := ParseChallengeBatch([]byte(`[[challenge]]` + "\n" + `name = "Orphan"`)); err == nil {
		t.Fatal("expected an error for a batch without a code prefix")
	}
}
