package rpc

import (
	"regexp"
	"testing"

	"github.com/ADTRAN/netconf-client/message"
	"github.com/stretchr/testify/assert"
)

const (
	rpcOpen  = `<rpc message-id="1" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">`
	rpcClose = `</rpc>`
	nc       = ` xmlns:nc="urn:ietf:params:xml:ns:netconf:base:1.0"`
	wd       = `<with-defaults xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-with-defaults">report-all</with-defaults>`
)

func TestBuilders(t *testing.T) {
	origMsgID := newMessageID
	newMessageID = func() string { return "1" }
	defer func() { newMessageID = origMsgID }()

	for _, tc := range []struct {
		name string
		got  []byte
		want string
	}{
		{
			name: "edit-config",
			got:  EditConfig("candidate", "<config/>"),
			want: `<edit-config` + nc + `><target><candidate/></target><config/></edit-config>`,
		},
		{
			name: "edit-config/options",
			got:  EditConfig("running", "<config/>", DefaultOperation("merge"), TestOption("test-then-set"), ErrorOption("rollback-on-error")),
			want: `<edit-config` + nc + `><target><running/></target><default-operation>merge</default-operation>` +
				`<test-option>test-then-set</test-option><error-option>rollback-on-error</error-option><config/></edit-config>`,
		},
		{
			name: "get",
			got:  Get(),
			want: `<get` + nc + `></get>`,
		},
		{
			name: "get/filter",
			got:  Get(WithFilter(`<filter><foo/></filter>`), WithDefaults("report-all")),
			want: `<get` + nc + `><filter><foo/></filter>` + wd + `</get>`,
		},
		{
			name: "get-config",
			got:  GetConfig("running", WithFilter(`<filter><foo/></filter>`)),
			want: `<get-config` + nc + `><source><running/></source><filter><foo/></filter></get-config>`,
		},
		{
			name: "get-data",
			got:  GetData("ds:operational"),
			want: `<get-data xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-nmda" xmlns:ds="urn:ietf:params:xml:ns:yang:ietf-datastores" xmlns:or="urn:ietf:params:xml:ns:yang:ietf-origin">` +
				`<datastore>ds:operational</datastore></get-data>`,
		},
		{
			name: "get-data/options",
			got: GetData("ds:running",
				WithFilter(`<subtree-filter><foo/></subtree-filter>`),
				ConfigFilter(false),
				OriginFilters(true, "or:system", "or:default"),
				MaxDepth(3),
				WithOrigin(),
				WithDefaults("report-all"),
			),
			want: `<get-data xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-nmda" xmlns:ds="urn:ietf:params:xml:ns:yang:ietf-datastores" xmlns:or="urn:ietf:params:xml:ns:yang:ietf-origin">` +
				`<datastore>ds:running</datastore><subtree-filter><foo/></subtree-filter><config-filter>false</config-filter>` +
				`<negated-origin-filter>or:system</negated-origin-filter><negated-origin-filter>or:default</negated-origin-filter>` +
				`<max-depth>3</max-depth><with-origin/>` + wd + `</get-data>`,
		},
		{
			name: "copy-config",
			got:  CopyConfig("startup", "running"),
			want: `<copy-config><target><startup/></target><source><running/></source></copy-config>`,
		},
		{
			name: "copy-config/inline",
			got:  CopyConfig("running", "<config><foo/></config>", WithDefaults("report-all")),
			want: `<copy-config><target><running/></target><source><config><foo/></config></source>` + wd + `</copy-config>`,
		},
		{
			name: "delete-config",
			got:  DeleteConfig("startup"),
			want: `<delete-config><target><startup/></target></delete-config>`,
		},
		{
			name: "discard-changes",
			got:  DiscardChanges(),
			want: `<discard-changes/>`,
		},
		{
			name: "commit",
			got:  Commit(),
			want: `<commit></commit>`,
		},
		{
			name: "commit/confirmed",
			got:  Commit(Confirmed(), ConfirmTimeout(60), Persist("p&1"), PersistID("p0")),
			want: `<commit><confirmed/><confirm-timeout>60</confirm-timeout><persist>p&amp;1</persist><persist-id>p0</persist-id></commit>`,
		},
		{
			name: "cancel-commit",
			got:  CancelCommit(PersistID("p1")),
			want: `<cancel-commit><persist-id>p1</persist-id></cancel-commit>`,
		},
		{
			name: "lock",
			got:  Lock("candidate"),
			want: `<lock><target><candidate/></target></lock>`,
		},
		{
			name: "unlock",
			got:  Unlock("candidate"),
			want: `<unlock><target><candidate/></target></unlock>`,
		},
		{
			name: "kill-session",
			got:  KillSession(42),
			want: `<kill-session><session-id>42</session-id></kill-session>`,
		},
		{
			name: "close-session",
			got:  CloseSession(),
			want: `<close-session/>`,
		},
		{
			name: "create-subscription",
			got:  CreateSubscription(Stream("NETCONF"), WithFilter(`<filter/>`), StartTime("2007-07-08T00:00:00Z"), StopTime("2007-07-09T00:00:00Z")),
			want: `<create-subscription xmlns="urn:ietf:params:xml:ns:netconf:notification:1.0"><stream>NETCONF</stream><filter/>` +
				`<startTime>2007-07-08T00:00:00Z</startTime><stopTime>2007-07-09T00:00:00Z</stopTime></create-subscription>`,
		},
		{
			name: "validate",
			got:  Validate("candidate"),
			want: `<validate><source><candidate/></source></validate>`,
		},
		{
			name: "validate/inline",
			got:  Validate("<config><foo/></config>"),
			want: `<validate><source><config><foo/></config></source></validate>`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			ck.Equal(rpcOpen+tc.want+rpcClose, string(tc.got))
			// every request is a well formed document
			m, err := message.Parse(tc.got)
			if ck.NoError(err) {
				ck.Equal("rpc", m.Root.Data)
				ck.Equal(message.NamespaceBase, m.Root.NamespaceURI)
				ck.Equal("1", m.MessageID())
			}
		})
	}
}

func TestWithMessageID(t *testing.T) {
	ck := assert.New(t)
	ck.Equal(`<rpc message-id="a&lt;b" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><close-session/></rpc>`,
		string(CloseSession(WithMessageID("a<b"))))
}

func TestDefaultMessageID(t *testing.T) {
	ck := assert.New(t)
	uuidRE := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		m, err := message.Parse(Get())
		if !ck.NoError(err) {
			return
		}
		id := m.MessageID()
		ck.Regexp(uuidRE, id)
		ck.False(seen[id], "duplicate message-id %s", id)
		seen[id] = true
	}
}
