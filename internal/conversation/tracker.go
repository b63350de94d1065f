package conversation

// Tracker holds the current phase and the data gathered so far.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	phase     Phase
	extracted map[string]any
}

// NewTracker starts at phase, or greeting when phase is unknown.
func NewTracker(phase Phase, extracted map[string]any) *Tracker {
	if !phase.Known() {
		phase = PhaseGreeting
	}
	t := &Tracker{phase: phase, extracted: map[string]any{}}
	for k, v := range extracted {
		t.extracted[k] = v
	}
	return t
}

// Observe parses reply, advances the tracker and returns the visible text.
// Unknown phases keep the previous phase; extracted data is merged key by key.
// ready_for_upload moves an early conversation straight to the evidence phase
// so the permission survives being persisted as a phase.
func (t *Tracker) Observe(reply string) string {
	visible, st, ok := Parse(reply)
	if !ok {
		return visible
	}
	if st.Phase.Known() {
		t.phase = st.Phase
	}
	if st.ReadyForUpload && (t.phase == PhaseGreeting || t.phase == PhaseCollecting) {
		t.phase = PhaseEvidence
	}
	for k, v := range st.ExtractedData {
		if v == nil {
			continue
		}
		t.extracted[k] = v
	}
	return visible
}

func (t *Tracker) Phase() Phase { return t.phase }

// Extracted returns a copy of the merged extracted data.
func (t *Tracker) Extracted() map[string]any {
	out := make(map[string]any, len(t.extracted))
	for k, v := range t.extracted {
		out[k] = v
	}
	return out
}

// AllowsUpload reports whether evidence uploads are accepted right now.
func (t *Tracker) AllowsUpload() bool {
	return PhaseAllowsUpload(t.phase)
}

// PhaseAllowsUpload reports whether a stored phase accepts uploads.
func PhaseAllowsUpload(p Phase) bool {
	return p == PhaseEvidence || p == PhaseReview
}
