package v1alpha1

import (
	"encoding/json"
	"strings"
)

// FlowStep is one step of a business flow.
type FlowStep struct {
	ID      StepID     `json:"id"`
	Title   string     `json:"title,omitempty"`
	Summary string     `json:"summary,omitempty"`
	Message *Reference `json:"message,omitempty"`
	Service *Reference `json:"service,omitempty"`
	Flow    *Reference `json:"flow,omitempty"`

	NextStep  *StepLink  `json:"next_step,omitempty"`
	NextSteps []StepLink `json:"next_steps,omitempty"`
}

// StepID is a step identifier. Authors use both `id: 1` and `id: "start"`.
type StepID string

func (s *StepID) UnmarshalJSON(data []byte) error {
	var v VersionString
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = StepID(v)
	return nil
}

// StepLink points at another step, optionally with a label. It decodes from
// a bare id or from `{id, label}`.
type StepLink struct {
	ID    StepID `json:"id"`
	Label string `json:"label,omitempty"`
}

func (l *StepLink) UnmarshalJSON(data []byte) error {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		var raw struct {
			ID    StepID `json:"id"`
			Label string `json:"label,omitempty"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		l.ID, l.Label = raw.ID, raw.Label
		return nil
	}
	return l.ID.UnmarshalJSON(data)
}
