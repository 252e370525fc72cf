package medication

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/medsheet/medsheet/internal/platform/filetext"
)

// extractionPrompt asks the model for exactly the five catalog fields as a
// bare JSON object. The field casing here is the API contract.
const extractionPrompt = "You are an assistant that will receive information on a medication. " +
	"Parse the information and extract the medication data into the following fields as json: " +
	"name, contents, sideEffects, objective, dosageSchedule. " +
	"Each of those fields should be free text. " +
	"The returned object should contain only those five properties. " +
	"The returned value should be valid json with no new lines and no text before or after the json output. " +
	"Translate to English if necessary."

type extractedMedication struct {
	Name           string `json:"name"`
	Contents       string `json:"contents"`
	SideEffects    string `json:"sideEffects"`
	Objective      string `json:"objective"`
	DosageSchedule string `json:"dosageSchedule"`
}

// CreateFromFile extracts a medication from an uploaded document and stores
// it. Unsupported file types, empty documents, and unparseable model output
// are distinct errors; all of them mean the upload was not stored.
func (s *Service) CreateFromFile(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*Medication, error) {
	text, err := filetext.Extract(filename, r)
	if err != nil {
		return nil, err
	}

	raw, err := s.gateway.Run(ctx, extractionPrompt, text)
	if err != nil {
		return nil, err
	}

	var ext extractedMedication
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &ext); err != nil {
		return nil, fmt.Errorf("extraction response is not valid json: %s", raw)
	}

	m := &Medication{
		UserID:         userID,
		Name:           ext.Name,
		Contents:       ext.Contents,
		Objective:      ext.Objective,
		SideEffects:    ext.SideEffects,
		DosageSchedule: ext.DosageSchedule,
	}
	if err := s.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
