// Package conversation tracks the intake phase the assistant reports in
// the state block it embeds in each reply.
package conversation

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Phase is a step of the accident intake conversation.
type Phase string

const (
	PhaseGreeting   Phase = "greeting"
	PhaseCollecting Phase = "collecting"
	PhaseEvidence   Phase = "evidence"
	PhaseReview     Phase = "review"
	PhaseComplete   Phase = "complete"
)

// Known reports whether p is one of the defined phases.
func (p Phase) Known() bool {
	switch p {
	case PhaseGreeting, PhaseCollecting, PhaseEvidence, PhaseReview, PhaseComplete:
		return true
	}
	return false
}

// State is the payload of a state block.
type State struct {
	Phase          Phase          `json:"phase"`
	ExtractedData  map[string]any `json:"extracted_data"`
	ReadyForUpload bool           `json:"ready_for_upload"`
}

var (
	fencedBlock = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	tagBlock    = regexp.MustCompile(`(?s)<state>\s*(\{.*?\})\s*</state>`)
)

// Parse splits an assistant reply into the visible text and its state block.
// ok is false when no block is present or the block is not valid JSON; the
// visible text has well-formed and malformed blocks removed either way.
func Parse(reply string) (visible string, st State, ok bool) {
	visible = reply
	for _, re := range []*regexp.Regexp{tagBlock, fencedBlock} {
		loc := re.FindStringSubmatchIndex(visible)
		if loc == nil {
			continue
		}
		raw := visible[loc[2]:loc[3]]
		visible = visible[:loc[0]] + visible[loc[1]:]
		if !ok {
			var candidate State
			if err := json.Unmarshal([]byte(raw), &candidate); err == nil {
				st, ok = candidate, true
			}
		}
	}
	return strings.TrimSpace(visible), st, ok
}
