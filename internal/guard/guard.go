// Package guard decides, before a view runs, whether the current session
// may see the requested route.
package guard

import "strings"

// Decision is the outcome for one route.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToDashboard
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToDashboard:
		return "redirect-to-dashboard"
	default:
		return "unknown"
	}
}

// Routes.
const (
	RouteRoot          = "/"
	RouteLogin         = "/login"
	RouteRegister      = "/register"
	RouteDashboard     = "/dashboard"
	RouteTransactions  = "/transactions"
	RouteCategories    = "/categories"
	RouteEmailAccounts = "/email-accounts"
	RouteSettings      = "/settings"
)

// PathClass groups routes by how the guard treats them.
type PathClass int

const (
	Protected PathClass = iota
	AuthPage
	Public
)

var authPages = []string{RouteLogin, RouteRegister}

// Classify returns the class of path. Auth pages match by prefix, so
// /login?registered=true is still the login page. Anything that is not
// the root or an auth page is protected.
func Classify(path string) PathClass {
	if path == "" || path == RouteRoot {
		return Public
	}
	for _, p := range authPages {
		if strings.HasPrefix(path, p) {
			return AuthPage
		}
	}
	return Protected
}

// Decide applies the rule table.
func Decide(tokenPresent bool, path string) Decision {
	class := Classify(path)
	if !tokenPresent {
		if class == Protected {
			return RedirectToLogin
		}
		return Allow
	}
	if class == AuthPage {
		return RedirectToDashboard
	}
	return Allow
}
