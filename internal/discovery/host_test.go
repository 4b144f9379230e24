package discovery

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"lports/config"
	"lports/internal/core"
	ncerr "lports/internal/errors"
	"lports/internal/metrics"
	"lports/listen"
	"lports/util"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustBuild(t *testing.T, name, typ string, props map[string]string) core.Instance {
	t.Helper()
	inst, err := core.Build(config.Component{Name: name, Type: typ, Properties: props})
	require.NoError(t, err)
	return inst
}

func funcInstance(name string, f listen.ComponentFunc, descs ...listen.PropertyDescriptor) core.Instance {
	return core.Instance{
		Name:        name,
		Type:        "custom",
		Component:   f,
		Context:     config.NewContext(nil),
		Descriptors: descs,
	}
}

func port(t *testing.T, name string, number int, tp listen.TransportProtocol, protocols ...string) listen.Port {
	t.Helper()
	p, err := listen.NewPortBuilder().Name(name).Number(number).Transport(tp).ApplicationProtocols(protocols).Build()
	require.NoError(t, err)
	return p
}

func TestHost_Register(t *testing.T) {
	h := New()

	id, err := h.Register(mustBuild(t, "edge", "http", nil))
	require.NoError(t, err)
	assert.NotEqual(t, id.String(), "00000000-0000-0000-0000-000000000000")

	_, err = h.Register(mustBuild(t, "edge", "syslog", nil))
	assert.ErrorIs(t, err, ncerr.ErrDuplicateComponent)
	assert.Len(t, h.Registrations(), 1)
}

func TestHost_Discover(t *testing.T) {
	mc := metrics.New()
	h := New(WithMetrics(mc))
	_, err := h.Register(mustBuild(t, "edge", "http", map[string]string{"port": "8443"}))
	require.NoError(t, err)
	_, err = h.Register(mustBuild(t, "logs", "syslog", map[string]string{"tcp-port": "601", "udp-port": "514"}))
	require.NoError(t, err)
	_, err = h.Register(mustBuild(t, "idle", "listener", nil))
	require.NoError(t, err)

	snap, err := h.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Entries, 3)
	assert.Equal(t, []string{"edge", "logs", "idle"},
		[]string{snap.Entries[0].Name, snap.Entries[1].Name, snap.Entries[2].Name})
	assert.Equal(t, 3, snap.PortCount())
	assert.NotNil(t, snap.Entries[2].Ports)
	assert.Empty(t, snap.Entries[2].Ports)
	assert.False(t, snap.Taken.IsZero())

	assert.True(t, snap.Entries[0].Ports[0].Equal(
		port(t, "HTTP Listener", 8443, listen.TCP, "h2", "http/1.1")))

	assert.EqualValues(t, 3, mc.ComponentQueries())
	assert.EqualValues(t, 3, mc.ActivePorts())
	assert.EqualValues(t, 1, mc.Discoveries())
}

func TestHost_DiscoverPreservesOrder(t *testing.T) {
	h := New(WithConcurrency(4))
	for i := 0; i < 32; i++ {
		n := i
		delay := time.Duration(32-i) * time.Millisecond / 4
		_, err := h.Register(funcInstance(string(rune('A'+i)), func(listen.ConfigurationContext) []listen.Port {
			time.Sleep(delay)
			return []listen.Port{port(t, "p", n, listen.TCP)}
		}))
		require.NoError(t, err)
	}

	snap, err := h.Discover(context.Background())
	require.NoError(t, err)
	for i, e := range snap.Entries {
		assert.Equal(t, i, e.Ports[0].PortNumber())
	}
}

func TestHost_DiscoverBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	h := New(WithConcurrency(2))
	for i := 0; i < 8; i++ {
		_, err := h.Register(funcInstance(string(rune('a'+i)), func(listen.ConfigurationContext) []listen.Port {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}))
		require.NoError(t, err)
	}

	_, err := h.Discover(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestHost_DiscoverRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := util.NewLogger(1)
	logger.SetOutput(&buf)
	mc := metrics.New()

	h := New(WithLogger(logger), WithMetrics(mc))
	_, err := h.Register(funcInstance("bad", func(listen.ConfigurationContext) []listen.Port {
		panic("boom")
	}))
	require.NoError(t, err)
	_, err = h.Register(mustBuild(t, "edge", "http", map[string]string{"port": "80"}))
	require.NoError(t, err)

	snap, err := h.Discover(context.Background())
	require.NoError(t, err)

	assert.Empty(t, snap.Entries[0].Ports)
	assert.Contains(t, snap.Entries[0].Error, "boom")
	assert.Contains(t, snap.Entries[0].Error, "component bad (custom)")
	assert.Len(t, snap.Entries[1].Ports, 1)
	assert.EqualValues(t, 1, mc.ErrorCount())
	assert.Contains(t, buf.String(), "[ERR]")
}

func TestHost_DiscoverNilPorts(t *testing.T) {
	h := New()
	_, err := h.Register(funcInstance("nil", func(listen.ConfigurationContext) []listen.Port { return nil }))
	require.NoError(t, err)

	snap, err := h.Discover(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.Entries[0].Ports)
}

func TestHost_DiscoverCancelled(t *testing.T) {
	h := New()
	_, err := h.Register(mustBuild(t, "edge", "http", map[string]string{"port": "80"}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Discover(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHost_ConformanceCheck(t *testing.T) {
	def := listen.MustDefinition(listen.TCP, listen.ProtocolHTTP11)
	desc := listen.PropertyDescriptor{Name: "port", ListenPort: &def}
	mc := metrics.New()

	h := New(WithConformanceCheck(true), WithMetrics(mc))
	_, err := h.Register(funcInstance("rogue", func(listen.ConfigurationContext) []listen.Port {
		return []listen.Port{
			port(t, "ok", 80, listen.TCP, listen.ProtocolHTTP11),
			port(t, "bad", 443, listen.TCP, listen.ProtocolH2),
		}
	}, desc))
	require.NoError(t, err)

	snap, err := h.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Entries[0].Violations, 1)
	assert.Contains(t, snap.Entries[0].Violations[0], "h2")
	assert.Equal(t, 1, snap.Violations())
	assert.EqualValues(t, 1, mc.NonConformingCount())
	assert.Len(t, snap.Entries[0].Ports, 2, "violations never drop ports")
}

func TestHost_Definitions(t *testing.T) {
	h := New()
	for _, c := range []struct{ name, typ string }{
		{"a", "syslog"}, {"b", "http"}, {"c", "syslog"},
	} {
		_, err := h.Register(mustBuild(t, c.name, c.typ, nil))
		require.NoError(t, err)
	}

	defs := h.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, DefinitionEntry{Type: "syslog", Property: "tcp-port", Transport: listen.TCP, ApplicationProtocols: []string{"syslog"}}, defs[0])
	assert.Equal(t, "udp-port", defs[1].Property)
	assert.Equal(t, []string{"h2", "http/1.1", "grpc"}, defs[2].ApplicationProtocols)
}

func TestHost_Quarantine(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	var calls atomic.Int32
	panicking := atomic.Bool{}
	panicking.Store(true)

	h := New(WithQuarantine(2, time.Minute))
	h.now = func() time.Time { return clock }
	_, err := h.Register(funcInstance("flaky", func(listen.ConfigurationContext) []listen.Port {
		calls.Add(1)
		if panicking.Load() {
			panic("flaky")
		}
		return []listen.Port{port(t, "p", 1, listen.TCP)}
	}))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := h.Discover(ctx)
		require.NoError(t, err)
	}
	assert.True(t, h.Registrations()[0].Quarantined())

	snap, err := h.Discover(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "quarantined component must not be called")
	assert.Contains(t, snap.Entries[0].Error, "circuit open")

	clock = clock.Add(time.Minute)
	panicking.Store(false)
	snap, err = h.Discover(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Entries[0].Ports, 1)
	assert.False(t, h.Registrations()[0].Quarantined())
}
