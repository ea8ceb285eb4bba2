package entity

// Phase is a lifecycle stage of a draft document. The wizard walks the
// ordered sequence below, but nothing in the core rejects an out-of-order
// phase assignment; progress is a pure derivation from the phase's index.
type Phase string

const (
	PhaseSolutionDiscovery   Phase = "SOLUTION_DISCOVERY"
	PhaseScenarioExploration Phase = "SCENARIO_EXPLORATION"
	PhaseIntentDefinition    Phase = "INTENT_DEFINITION"
	PhaseToolsProposal       Phase = "TOOLS_PROPOSAL"
	PhaseToolDefinition      Phase = "TOOL_DEFINITION"
	PhasePolicyDefinition    Phase = "POLICY_DEFINITION"
	PhaseMockTesting         Phase = "MOCK_TESTING"
	PhaseReadyToExport       Phase = "READY_TO_EXPORT"
	PhaseExported            Phase = "EXPORTED"

	// PhaseValidation is the fixed post-import phase. Imported documents
	// bypass the wizard sequence and land here regardless of any status
	// the source document claims.
	PhaseValidation Phase = "VALIDATION"
)

// InitialPhase is assigned to freshly created drafts.
const InitialPhase = PhaseSolutionDiscovery

// ImportPhase is assigned to drafts built from externally authored documents.
const ImportPhase = PhaseValidation

// phaseSequence is the ordered wizard progression. PhaseValidation sits
// outside the sequence.
var phaseSequence = []Phase{
	PhaseSolutionDiscovery,
	PhaseScenarioExploration,
	PhaseIntentDefinition,
	PhaseToolsProposal,
	PhaseToolDefinition,
	PhasePolicyDefinition,
	PhaseMockTesting,
	PhaseReadyToExport,
	PhaseExported,
}

// validationPhaseProgress is the fixed progress reported for imported
// documents awaiting validation.
const validationPhaseProgress = 75.0

// Phases returns the ordered wizard phase sequence.
func Phases() []Phase {
	out := make([]Phase, len(phaseSequence))
	copy(out, phaseSequence)
	return out
}

// Valid reports whether p is a recognized phase (sequence or import phase).
func (p Phase) Valid() bool {
	if p == PhaseValidation {
		return true
	}
	return p.index() >= 0
}

func (p Phase) index() int {
	for i, candidate := range phaseSequence {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Progress derives the completion percentage for p. READY_TO_EXPORT and
// EXPORTED both report 100. Unknown phases report 0.
func (p Phase) Progress() float64 {
	if p == PhaseValidation {
		return validationPhaseProgress
	}
	if p == PhaseReadyToExport || p == PhaseExported {
		return 100
	}
	idx := p.index()
	if idx < 0 {
		return 0
	}
	return float64(idx) / float64(len(phaseSequence)-1) * 100
}
