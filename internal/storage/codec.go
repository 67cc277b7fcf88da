package storage

import (
	"encoding/json"
	"errors"

	"territune/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp sets the current schema and codec versions on a record before it is
// persisted.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodeRunReport(r model.RunReport) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRunReport(data []byte) (model.RunReport, error) {
	var report model.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return model.RunReport{}, err
	}
	if err := checkVersion(report.VersionedRecord); err != nil {
		return model.RunReport{}, err
	}
	return report, nil
}

func EncodeTunedProfiles(t model.TunedProfiles) ([]byte, error) {
	return json.Marshal(t)
}

func DecodeTunedProfiles(data []byte) (model.TunedProfiles, error) {
	var tuned model.TunedProfiles
	if err := json.Unmarshal(data, &tuned); err != nil {
		return model.TunedProfiles{}, err
	}
	if err := checkVersion(tuned.VersionedRecord); err != nil {
		return model.TunedProfiles{}, err
	}
	return tuned, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
