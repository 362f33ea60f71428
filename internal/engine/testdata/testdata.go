// Package testdata embeds a realistic sample batch of survey submissions
// for pipeline tests and local development with the static provider.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/crimson-sun/fieldview/internal/model"
)

//go:embed sample.json
var sampleJSON []byte

// LoadSample parses the embedded sample batch. The batch mirrors real API
// payloads: grouped field names, composite GPS and Sondage strings, a
// duplicated submission id, and a few malformed values.
func LoadSample() ([]model.RawSubmission, error) {
	var envelope struct {
		Results []model.RawSubmission `json:"results"`
	}
	if err := json.Unmarshal(sampleJSON, &envelope); err != nil {
		return nil, fmt.Errorf("parse sample.json: %w", err)
	}
	return envelope.Results, nil
}
