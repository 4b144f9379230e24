package listen

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpListener(t *testing.T) Port {
	t.Helper()
	p, err := NewPortBuilder().
		Name("HTTP Listener").
		Number(8443).
		Transport(TCP).
		ApplicationProtocols([]string{ProtocolH2, ProtocolHTTP11}).
		Build()
	require.NoError(t, err)
	return p
}

func TestPortBuilder_HTTPListener(t *testing.T) {
	p := httpListener(t)

	assert.Equal(t, "HTTP Listener", p.PortName())
	assert.Equal(t, 8443, p.PortNumber())
	assert.Equal(t, TCP, p.TransportProtocol())
	assert.Equal(t, []string{"h2", "http/1.1"}, p.ApplicationProtocols())

	s := p.String()
	for _, want := range []string{"HTTP Listener", "8443", "TCP", "h2", "http/1.1"} {
		assert.Contains(t, s, want)
	}
}

func TestPortBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *PortBuilder
		wantErr []error
	}{
		{
			name:    "valid without protocols",
			builder: NewPortBuilder().Name("raw").Number(9000).Transport(UDP),
		},
		{
			name:    "missing name",
			builder: NewPortBuilder().Number(9000).Transport(TCP),
			wantErr: []error{ErrMissingPortName},
		},
		{
			name:    "missing transport",
			builder: NewPortBuilder().Name("raw").Number(9000),
			wantErr: []error{ErrMissingTransportProtocol},
		},
		{
			name:    "invalid transport",
			builder: NewPortBuilder().Name("raw").Transport("SCTP"),
			wantErr: []error{ErrMissingTransportProtocol},
		},
		{
			name:    "missing both",
			builder: NewPortBuilder().Number(1),
			wantErr: []error{ErrMissingPortName, ErrMissingTransportProtocol},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.builder.Build()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.True(t, errors.Is(err, want), "error %v should match %v", err, want)
			}
			assert.True(t, p.Equal(Port{}), "failed build must not return a partial port")
		})
	}
}

func TestPortBuilder_EmptyProtocols(t *testing.T) {
	explicit, err := NewPortBuilder().Name("a").Transport(TCP).ApplicationProtocols([]string{}).Build()
	require.NoError(t, err)
	assert.NotNil(t, explicit.ApplicationProtocols())
	assert.Empty(t, explicit.ApplicationProtocols())

	reset, err := NewPortBuilder().Name("a").Transport(TCP).ApplicationProtocols(nil).Build()
	require.NoError(t, err)
	assert.NotNil(t, reset.ApplicationProtocols())

	zero := &PortBuilder{}
	fromZero, err := zero.Name("a").Transport(TCP).Build()
	require.NoError(t, err)
	assert.NotNil(t, fromZero.ApplicationProtocols())
}

func TestPort_Equality(t *testing.T) {
	base := httpListener(t)
	same := httpListener(t)

	assert.True(t, base.Equal(same))
	assert.Equal(t, base.Hash(), same.Hash())

	variants := map[string]*PortBuilder{
		"name":      NewPortBuilder().Name("Other").Number(8443).Transport(TCP).ApplicationProtocols([]string{"h2", "http/1.1"}),
		"number":    NewPortBuilder().Name("HTTP Listener").Number(8080).Transport(TCP).ApplicationProtocols([]string{"h2", "http/1.1"}),
		"transport": NewPortBuilder().Name("HTTP Listener").Number(8443).Transport(UDP).ApplicationProtocols([]string{"h2", "http/1.1"}),
		"protocols": NewPortBuilder().Name("HTTP Listener").Number(8443).Transport(TCP).ApplicationProtocols([]string{"http/1.1", "h2"}),
	}
	for field, b := range variants {
		t.Run(field, func(t *testing.T) {
			other, err := b.Build()
			require.NoError(t, err)
			assert.False(t, base.Equal(other))
			assert.NotEqual(t, base.Hash(), other.Hash())
		})
	}
}

func TestPort_Immutable(t *testing.T) {
	protocols := []string{ProtocolH2}
	b := NewPortBuilder().Name("p").Transport(TCP).ApplicationProtocols(protocols)
	p, err := b.Build()
	require.NoError(t, err)

	protocols[0] = "changed"
	b.Name("renamed").ApplicationProtocols([]string{ProtocolGRPC})
	out := p.ApplicationProtocols()
	out[0] = "changed"

	assert.Equal(t, "p", p.PortName())
	assert.Equal(t, []string{ProtocolH2}, p.ApplicationProtocols())
}

func TestPort_Key(t *testing.T) {
	a := httpListener(t)
	moved, err := NewPortBuilder().Name("HTTP Listener").Number(9443).Transport(TCP).Build()
	require.NoError(t, err)
	assert.Equal(t, a.Key(), moved.Key())
	assert.Equal(t, "HTTP Listener/tcp", a.Key())
}

func TestPort_JSON(t *testing.T) {
	p := httpListener(t)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"HTTP Listener","number":8443,"transport":"TCP","applicationProtocols":["h2","http/1.1"]}`,
		string(data))

	var decoded Port
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, p.Equal(decoded))

	err = json.Unmarshal([]byte(`{"number":1,"transport":"TCP"}`), &decoded)
	assert.ErrorIs(t, err, ErrMissingPortName)
}

func TestPort_JSONTransportCase(t *testing.T) {
	tests := []struct {
		transport string
		want      TransportProtocol
		wantErr   error
	}{
		{`"tcp"`, TCP, nil},
		{`"Udp"`, UDP, nil},
		{`" TCP "`, TCP, nil},
		{`"sctp"`, "", ErrInvalidTransportProtocol},
		{`""`, "", ErrMissingTransportProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			var p Port
			err := json.Unmarshal([]byte(`{"name":"a","number":1,"transport":`+tt.transport+`}`), &p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.TransportProtocol())
		})
	}
}

func TestEqualPorts(t *testing.T) {
	a := httpListener(t)
	b, err := NewPortBuilder().Name("x").Transport(UDP).Build()
	require.NoError(t, err)

	assert.True(t, EqualPorts([]Port{a, b}, []Port{a, b}))
	assert.False(t, EqualPorts([]Port{a, b}, []Port{b, a}))
	assert.True(t, EqualPorts([]Port{}, nil))
}
