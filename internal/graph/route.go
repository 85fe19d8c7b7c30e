package graph

import "strings"

// Route is the domain a question is dispatched to.
type Route int

const (
	// RouteUnclassified marks a classifier reply that named no known route.
	RouteUnclassified Route = iota
	RouteEngineering
	RouteSafety
	RouteUnsupported
)

func (r Route) String() string {
	switch r {
	case RouteEngineering:
		return "engineering"
	case RouteSafety:
		return "safety"
	case RouteUnsupported:
		return "unsupported"
	case RouteUnclassified:
		return "unknown"
	}
	return "unknown"
}

// ParseRoute maps a classifier reply onto a Route. Only an exact label,
// ignoring case and surrounding whitespace, is accepted.
func ParseRoute(reply string) Route {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "engineering":
		return RouteEngineering
	case "safety":
		return RouteSafety
	case "unsupported":
		return RouteUnsupported
	default:
		return RouteUnclassified
	}
}
