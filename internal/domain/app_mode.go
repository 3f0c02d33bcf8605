package domain

// ApplicationMode is the user-facing navigation mode a route was calculated for
// (e.g. "car", "bicycle"). Derived profiles share their parent's router but keep
// their own routing preferences.
type ApplicationMode string

type ParameterType string

const (
	ParameterBoolean  ParameterType = "boolean"
	ParameterNumeric  ParameterType = "numeric"
	ParameterSymbolic ParameterType = "symbolic"
)

// RoutingParameter is a named router option exposed to the user.
type RoutingParameter struct {
	ID             string
	Type           ParameterType
	DefaultBoolean bool
}
