package services

// ViewerRole is the side of the check-in the current viewer edits. Every
// non-employee viewer, including managers who are not the direct manager,
// is treated as the manager side; readonly exists only on the finalization
// overview and never reaches the completion machinery.
type ViewerRole int8

const (
	ViewerEmployee ViewerRole = iota
	ViewerManager
)

func (r ViewerRole) String() string {
	switch r {
	case ViewerEmployee:
		return "employee"
	case ViewerManager:
		return "manager"
	}
	return "unknown"
}

// CompletionState is derived purely from the two completion flags.
type CompletionState int8

const (
	StateBothOpen CompletionState = iota
	StateEmployeeCompleteManagerOpen
	StateManagerCompleteEmployeeOpen
	StateBothComplete
)

func CompletionStateOf(employeeComplete, managerComplete bool) CompletionState {
	switch {
	case employeeComplete && managerComplete:
		return StateBothComplete
	case employeeComplete:
		return StateEmployeeCompleteManagerOpen
	case managerComplete:
		return StateManagerCompleteEmployeeOpen
	default:
		return StateBothOpen
	}
}

func (s CompletionState) String() string {
	switch s {
	case StateBothOpen:
		return "both_open"
	case StateEmployeeCompleteManagerOpen:
		return "employee_complete_manager_open"
	case StateManagerCompleteEmployeeOpen:
		return "manager_complete_employee_open"
	case StateBothComplete:
		return "both_complete"
	}
	return "unknown"
}

func (s CompletionState) employeeComplete() bool {
	return s == StateEmployeeCompleteManagerOpen || s == StateBothComplete
}

func (s CompletionState) managerComplete() bool {
	return s == StateManagerCompleteEmployeeOpen || s == StateBothComplete
}

type DisplayMode string

const (
	DisplayShowOpenFields             DisplayMode = "show_open_fields"
	DisplayShowCompleteSummary        DisplayMode = "show_complete_summary"
	DisplayOtherParticipantComplete   DisplayMode = "show_other_participant_is_complete"
	DisplayOtherParticipantIncomplete DisplayMode = "show_other_participant_is_incomplete"
)

// ViewerDisplayMode selects the default rendering of the viewer's own
// side. Completion gates display only; a completed side remains editable
// (it can be uncompleted).
func ViewerDisplayMode(s CompletionState, role ViewerRole) DisplayMode {
	switch role {
	case ViewerEmployee:
		if s.employeeComplete() {
			return DisplayShowCompleteSummary
		}
		return DisplayShowOpenFields
	case ViewerManager:
		if s.managerComplete() {
			return DisplayShowCompleteSummary
		}
		return DisplayShowOpenFields
	}
	return DisplayShowOpenFields
}

// OtherParticipantDisplayMode reports the other side's completion badge.
func OtherParticipantDisplayMode(s CompletionState, role ViewerRole) DisplayMode {
	switch role {
	case ViewerEmployee:
		if s.managerComplete() {
			return DisplayOtherParticipantComplete
		}
		return DisplayOtherParticipantIncomplete
	case ViewerManager:
		if s.employeeComplete() {
			return DisplayOtherParticipantComplete
		}
		return DisplayOtherParticipantIncomplete
	}
	return DisplayOtherParticipantIncomplete
}
