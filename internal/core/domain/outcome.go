package domain

// Fallback routes used by the gate.
const (
	PathLogin = "/login"
	PathHome  = "/"
)

// Outcome is the gate's decision for one navigation attempt.
type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Target is the redirect location for the outcome, empty for Render.
func (o Outcome) Target() string {
	switch o {
	case RedirectLogin:
		return PathLogin
	case RedirectHome:
		return PathHome
	default:
		return ""
	}
}
