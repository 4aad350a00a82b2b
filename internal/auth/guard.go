package auth

import (
	"net/url"
	"strings"

	"github.com/gs-sport/storefront/internal/domain"
)

// RouteClass groups page paths by the protection they need.
type RouteClass int

const (
	RouteUnrestricted RouteClass = iota
	RouteAuth
	RouteUserProtected
	RouteAdmin
)

// Redirect targets used by the guard.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
	HomePath      = "/"
	CallbackParam = "callbackUrl"
)

var (
	authRoutes          = []string{"/login", "/register"}
	userProtectedRoutes = []string{"/dashboard", "/checkout"}
	adminRoutes         = []string{"/admin"}
)

// Outcome is the guard verdict for a request.
type Outcome int

const (
	OutcomePass Outcome = iota
	OutcomeRedirectDashboard
	OutcomeRedirectLogin
	OutcomeRedirectHome
)

// Decision is an outcome plus the redirect location, if any.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Classify maps a path to its route class. Classes are checked in the order
// auth, user-protected, admin and the first match wins. Matching ignores case
// because the router does.
func Classify(path string) RouteClass {
	path = strings.ToLower(path)
	switch {
	case matchesAny(path, authRoutes):
		return RouteAuth
	case matchesAny(path, userProtectedRoutes):
		return RouteUserProtected
	case matchesAny(path, adminRoutes):
		return RouteAdmin
	default:
		return RouteUnrestricted
	}
}

// Decide evaluates the perimeter rules for path. identity is nil for anonymous callers.
func Decide(path string, identity *domain.Identity) Decision {
	switch Classify(path) {
	case RouteAuth:
		if identity != nil {
			return Decision{Outcome: OutcomeRedirectDashboard, Location: DashboardPath}
		}
		return pass()
	case RouteUserProtected:
		if identity == nil {
			return redirectLogin(path)
		}
		return pass()
	case RouteAdmin:
		if identity == nil {
			return redirectLogin(path)
		}
		switch identity.Role {
		case domain.RoleAdmin:
			return pass()
		case domain.RoleUser:
			return Decision{Outcome: OutcomeRedirectHome, Location: HomePath}
		default:
			return Decision{Outcome: OutcomeRedirectHome, Location: HomePath}
		}
	default:
		return pass()
	}
}

func pass() Decision {
	return Decision{Outcome: OutcomePass}
}

func redirectLogin(path string) Decision {
	q := url.Values{}
	q.Set(CallbackParam, path)
	return Decision{Outcome: OutcomeRedirectLogin, Location: LoginPath + "?" + q.Encode()}
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
