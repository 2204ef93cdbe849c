package rpc

// Option is an RPC builder option. Builders ignore options that do not
// apply to their operation.
type Option func(*request)

type request struct {
	messageID    string
	filter       string
	withDefaults string

	defaultOperation string
	testOption       string
	errorOption      string

	confirmed      bool
	confirmTimeout int
	persist        string
	persistID      string

	configFilter        *bool
	originFilters       []string
	negateOriginFilters bool
	maxDepth            int
	withOrigin          bool

	stream    string
	startTime string
	stopTime  string
}

func newRequest(opts []Option) *request {
	r := &request{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithMessageID sets the message-id attribute. By default a random UUID is
// used.
func WithMessageID(id string) Option { return func(r *request) { r.messageID = id } }

// WithFilter adds a <filter> element (or, for <get-data>, a subtree-filter
// or xpath-filter element), inserted verbatim.
func WithFilter(filter string) Option { return func(r *request) { r.filter = filter } }

// WithDefaults adds an RFC6243 <with-defaults> mode such as "report-all".
func WithDefaults(mode string) Option { return func(r *request) { r.withDefaults = mode } }

// DefaultOperation sets the <edit-config> default-operation.
func DefaultOperation(op string) Option { return func(r *request) { r.defaultOperation = op } }

// TestOption sets the <edit-config> test-option.
func TestOption(opt string) Option { return func(r *request) { r.testOption = opt } }

// ErrorOption sets the <edit-config> error-option.
func ErrorOption(opt string) Option { return func(r *request) { r.errorOption = opt } }

// Confirmed requests a confirmed <commit>.
func Confirmed() Option { return func(r *request) { r.confirmed = true } }

// ConfirmTimeout sets the confirmed commit timeout in seconds.
func ConfirmTimeout(seconds int) Option { return func(r *request) { r.confirmTimeout = seconds } }

// Persist makes a confirmed commit survive the session, identified by id.
func Persist(id string) Option { return func(r *request) { r.persist = id } }

// PersistID confirms or cancels the persistent confirmed commit id.
func PersistID(id string) Option { return func(r *request) { r.persistID = id } }

// ConfigFilter restricts <get-data> to config true (or false) nodes.
func ConfigFilter(config bool) Option { return func(r *request) { r.configFilter = &config } }

// OriginFilters restricts <get-data> to the given origin identities. When
// negate is true the nodes with those origins are excluded instead.
func OriginFilters(negate bool, origins ...string) Option {
	return func(r *request) {
		r.negateOriginFilters = negate
		r.originFilters = origins
	}
}

// MaxDepth limits the depth of <get-data> subtrees returned.
func MaxDepth(depth int) Option { return func(r *request) { r.maxDepth = depth } }

// WithOrigin requests origin metadata in <get-data> replies.
func WithOrigin() Option { return func(r *request) { r.withOrigin = true } }

// Stream selects the notification stream of <create-subscription>.
func Stream(stream string) Option { return func(r *request) { r.stream = stream } }

// StartTime requests notification replay from an RFC3339 timestamp.
func StartTime(t string) Option { return func(r *request) { r.startTime = t } }

// StopTime ends a replay subscription at an RFC3339 timestamp.
func StopTime(t string) Option { return func(r *request) { r.stopTime = t } }
