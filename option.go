package netconf

import "time"

// ManagerOption is a NewManager option function.
type ManagerOption func(*Manager)

// WithTimeout sets the time to wait for each reply.
func WithTimeout(d time.Duration) ManagerOption { return func(m *Manager) { m.timeout = d } }

// WithLogID sets an id shown in traces in place of, or beside, the
// connection endpoints.
func WithLogID(id string) ManagerOption { return func(m *Manager) { m.logID = id } }

// WithTrace replaces the request and reply trace function. trace is
// called for every request, whatever the glog verbosity.
func WithTrace(trace func(format string, args ...interface{})) ManagerOption {
	return func(m *Manager) {
		m.trace = trace
		m.tracing = func() bool { return true }
	}
}
