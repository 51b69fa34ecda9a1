package session

// GuardState is where a request stands with respect to authentication.
type GuardState struct {
	phase phase
	role  Role
}

type phase uint8

const (
	phaseLoading phase = iota
	phaseUnauthorized
	phaseAuthorized
)

var (
	Loading      = GuardState{phase: phaseLoading}
	Unauthorized = GuardState{phase: phaseUnauthorized}
)

func Authorized(role Role) GuardState {
	return GuardState{phase: phaseAuthorized, role: role}
}

// StateOf derives the guard state of a session; nil means restore has not completed yet.
func StateOf(s *Session) GuardState {
	if s == nil {
		return Loading
	}
	if role, ok := s.Role(); ok {
		return Authorized(role)
	}
	return Unauthorized
}

func (g GuardState) IsLoading() bool { return g.phase == phaseLoading }

// Role returns the authorized role, if any.
func (g GuardState) Role() (Role, bool) {
	return g.role, g.phase == phaseAuthorized
}

func (g GuardState) String() string {
	switch g.phase {
	case phaseLoading:
		return "Loading"
	case phaseUnauthorized:
		return "Unauthorized"
	}
	return "Authorized(" + g.role.String() + ")"
}

// Action is what a guarded screen must do.
type Action uint8

const (
	Render Action = iota
	Placeholder
	RedirectLogin
	RedirectLanding
)

// Decision is the outcome of Decide. Location is set for redirects.
type Decision struct {
	Action   Action
	Location string
}

// Decide applies the access rules of a screen open to the permitted roles.
// No permitted roles means any authenticated role.
func Decide(state GuardState, permitted ...Role) Decision {
	switch state.phase {
	case phaseLoading:
		return Decision{Action: Placeholder}
	case phaseUnauthorized:
		return Decision{Action: RedirectLogin, Location: "/login"}
	}
	if len(permitted) == 0 {
		return Decision{Action: Render}
	}
	for _, r := range permitted {
		if r == state.role {
			return Decision{Action: Render}
		}
	}
	return Decision{Action: RedirectLanding, Location: state.role.Landing()}
}
