package timesheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medsheet/medsheet/internal/domain/medication"
	"github.com/medsheet/medsheet/internal/platform/ai"
)

// schedulingPrompt is the fixed instruction for building a dosage schedule.
// The output contract and the date format are load-bearing; the parser
// below depends on both.
const schedulingPrompt = "You are an assistant that will receive a list of medications. " +
	"Use the medication information to build a timesheet for how a user should take the medications. " +
	"The information contains start and end dates for the period where the medications should be taken, " +
	"and a list of medications with information on dosage, contents, side effects and objective. " +
	"Pay special attention to the dosage for each medication: at what time it should be taken, " +
	"whether it should be taken with or without food, and whether it should be taken with fluids. " +
	"Use this information to build a timesheet for each medication. Pay attention to how the medications " +
	"combine, and add any relevant information to the advise property of a medication where needed. " +
	"Keep in mind that most people are awake from 08:00 until about 22:00 and make the schedule accordingly, " +
	"unless a medication must be taken during sleep hours or at exact time intervals. " +
	"Assume an adult under 65 unless told otherwise. " +
	"Return the timesheet as a json object with a single property medications, holding a list of objects " +
	"with the following five properties: id, name, dates, dosage, advise. " +
	"Each object should contain only those five properties. " +
	"The id must be the same id as provided in the input and must match the medication. " +
	"The dates property must be a list of dates with times when the medication should be taken within " +
	"the provided period, always formatted as '2006-01-02T15:04:05'. " +
	"The dosage should be free text describing how many dosages should be taken and how. " +
	"The returned value should be valid json with no new lines and no text before or after the json output."

// ResponseError reports that the model's reply could not be used as a
// timesheet. Raw carries the offending text for the caller to surface.
type ResponseError struct {
	Raw    string
	Reason string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("timesheet response %s. Instead it was: %s", e.Reason, e.Raw)
}

// Generator turns a set of medications and a date range into schedule
// entries with a single gateway call. No retries: a failed generation is
// the caller's problem to classify.
type Generator struct {
	gateway ai.Gateway
}

func NewGenerator(gateway ai.Gateway) *Generator {
	return &Generator{gateway: gateway}
}

type medicationDescriptor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Contents       string `json:"contents"`
	Objective      string `json:"objective"`
	SideEffects    string `json:"sideEffects"`
	DosageSchedule string `json:"dosageSchedule"`
}

type generationPayload struct {
	Medications []medicationDescriptor `json:"medications"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
}

type generationResult struct {
	Medications []MedicationEntry `json:"medications"`
}

// Build generates the schedule entries for the given medications. Transport
// failures pass through wrapped in ai.ErrConnection; a reply that is not
// valid JSON or does not honor the output contract surfaces a
// *ResponseError carrying the raw text.
func (g *Generator) Build(ctx context.Context, meds []*medication.Medication, start, end time.Time) ([]MedicationEntry, error) {
	payload := generationPayload{
		StartDate: start.Format(DateLayout),
		EndDate:   end.Format(DateLayout),
	}
	for _, m := range meds {
		payload.Medications = append(payload.Medications, medicationDescriptor{
			ID:             m.ID.String(),
			Name:           m.Name,
			Contents:       m.Contents,
			Objective:      m.Objective,
			SideEffects:    m.SideEffects,
			DosageSchedule: m.DosageSchedule,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	raw, err := g.gateway.Run(ctx, schedulingPrompt, string(data))
	if err != nil {
		if errors.Is(err, ai.ErrConnection) {
			return nil, err
		}
		return nil, fmt.Errorf("timesheet generation failed: %w", err)
	}

	var result generationResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return nil, &ResponseError{Raw: raw, Reason: "is not valid json"}
	}
	if len(result.Medications) == 0 {
		return nil, &ResponseError{Raw: raw, Reason: "has no medications"}
	}

	// Every returned id must echo one of the requested medications.
	requested := make(map[string]bool, len(meds))
	for _, m := range meds {
		requested[m.ID.String()] = true
	}
	for _, entry := range result.Medications {
		if !requested[entry.ID] {
			return nil, &ResponseError{Raw: raw, Reason: fmt.Sprintf("references unknown medication %q", entry.ID)}
		}
	}

	return result.Medications, nil
}
