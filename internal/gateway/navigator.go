package gateway

import (
	"sync"

	"financemonkey/fm-cli/internal/logging"
)

// RouteRecorder is the terminal Navigator: there is no screen to switch,
// so it remembers the last forced route for the command layer to report.
type RouteRecorder struct {
	logger logging.Logger

	mu     sync.Mutex
	routes []string
}

func NewRouteRecorder(logger logging.Logger) *RouteRecorder {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RouteRecorder{logger: logger}
}

func (r *RouteRecorder) Navigate(route string) {
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()
	r.logger.Debug("Navigation requested", logging.F(logging.FieldRoute, route))
}

// Last returns the most recent route, or "".
func (r *RouteRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

// Routes returns every recorded navigation in order.
func (r *RouteRecorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}
