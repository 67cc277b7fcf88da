package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"territune/internal/model"
)

func fixturePath(name string) string {
	return filepath.Join("testdata", name)
}

func TestDecodeRunReportFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("minimal_run_report_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	report, err := DecodeRunReport(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if report.RunID != "run-minimal-1" {
		t.Fatalf("unexpected run id: %s", report.RunID)
	}
	if len(report.Rounds) != 1 || report.Rounds[0].Matches != 4 {
		t.Fatalf("unexpected rounds: %+v", report.Rounds)
	}
	if len(report.Final) != 1 || report.Final[0].Overrides["attack"] != 1.35 {
		t.Fatalf("unexpected final profiles: %+v", report.Final)
	}
}

func TestDecodeTunedProfilesFixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath("minimal_tuned_profiles_v1.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	tuned, err := DecodeTunedProfiles(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if tuned.RunID != "run-minimal-1" {
		t.Fatalf("unexpected run id: %s", tuned.RunID)
	}
	if len(tuned.Profiles) != 1 || tuned.Profiles[0].Label != "Henrik the Marauder" {
		t.Fatalf("unexpected profiles: %+v", tuned.Profiles)
	}
}

func TestRunReportCodecRoundTrip(t *testing.T) {
	input := model.RunReport{
		VersionedRecord: Stamp(),
		RunID:           "run-1",
		Options: model.RunOptions{
			Seed:     99,
			Rounds:   2,
			MapTypes: []string{"open", "walls"},
		},
		Rounds: []model.RoundReport{
			{Round: 0, Matches: 12},
			{Round: 1, Matches: 12},
		},
		Final: []model.Profile{
			{VersionedRecord: Stamp(), ID: "r2-b0", Overrides: map[string]float64{"attack": 1.2}},
		},
		ElapsedMS: 345,
	}

	encoded, err := EncodeRunReport(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRunReport(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(decoded, input) {
		t.Fatalf("roundtrip mismatch\nactual=%+v\nexpected=%+v", decoded, input)
	}
}

func TestTunedProfilesCodecRoundTrip(t *testing.T) {
	input := model.TunedProfiles{
		VersionedRecord: Stamp(),
		RunID:           "run-1",
		Profiles: []model.Profile{
			{VersionedRecord: Stamp(), ID: "r2-b0", Label: "Nora the Pioneer"},
			{VersionedRecord: Stamp(), ID: "r2-b1", Label: "Oskar the Tactician"},
		},
	}

	encoded, err := EncodeTunedProfiles(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeTunedProfiles(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(decoded, input) {
		t.Fatalf("roundtrip mismatch\nactual=%+v\nexpected=%+v", decoded, input)
	}
}

func TestDecodeRunReportVersionMismatch(t *testing.T) {
	stale := model.RunReport{
		VersionedRecord: model.VersionedRecord{SchemaVersion: 0, CodecVersion: CurrentCodecVersion},
		RunID:           "run-stale",
	}
	encoded, err := EncodeRunReport(stale)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err = DecodeRunReport(encoded)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeTunedProfilesVersionMismatch(t *testing.T) {
	stale := model.TunedProfiles{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: 99},
		RunID:           "run-stale",
	}
	encoded, err := EncodeTunedProfiles(stale)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err = DecodeTunedProfiles(encoded)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeRunReportRejectsGarbage(t *testing.T) {
	if _, err := DecodeRunReport([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
