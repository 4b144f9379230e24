package listen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefinition(t *testing.T) {
	tests := []struct {
		name      string
		transport TransportProtocol
		protocols []string
		wantErr   error
	}{
		{"tcp with protocols", TCP, []string{ProtocolH2, ProtocolHTTP11}, nil},
		{"udp empty", UDP, []string{}, nil},
		{"unset transport", "", []string{}, ErrMissingTransportProtocol},
		{"unknown transport", TransportProtocol("SCTP"), []string{}, ErrMissingTransportProtocol},
		{"nil protocols", TCP, nil, ErrNilApplicationProtocols},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := NewDefinition(tt.transport, tt.protocols)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.transport, def.TransportProtocol())
			assert.Equal(t, tt.protocols, def.ApplicationProtocols())
		})
	}
}

func TestNewTransportDefinition(t *testing.T) {
	def, err := NewTransportDefinition(UDP)
	require.NoError(t, err)
	assert.Equal(t, UDP, def.TransportProtocol())
	assert.NotNil(t, def.ApplicationProtocols())
	assert.Empty(t, def.ApplicationProtocols())
}

func TestDefinition_Immutable(t *testing.T) {
	in := []string{ProtocolHTTP11, ProtocolH2}
	def, err := NewDefinition(TCP, in)
	require.NoError(t, err)

	in[0] = "mutated"
	assert.Equal(t, []string{ProtocolHTTP11, ProtocolH2}, def.ApplicationProtocols())

	out := def.ApplicationProtocols()
	out[1] = "mutated"
	assert.Equal(t, []string{ProtocolHTTP11, ProtocolH2}, def.ApplicationProtocols())
}

func TestDefinition_Equality(t *testing.T) {
	a := MustDefinition(TCP, ProtocolH2, ProtocolHTTP11)
	b := MustDefinition(TCP, ProtocolH2, ProtocolHTTP11)
	reordered := MustDefinition(TCP, ProtocolHTTP11, ProtocolH2)
	otherTransport := MustDefinition(UDP, ProtocolH2, ProtocolHTTP11)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(reordered), "protocol order must matter")
	assert.NotEqual(t, a.Hash(), reordered.Hash())
	assert.False(t, a.Equal(otherTransport))
}

func TestDefinition_Supports(t *testing.T) {
	def := MustDefinition(TCP, ProtocolH2, ProtocolHTTP11, ProtocolGRPC)
	assert.True(t, def.Supports(ProtocolGRPC))
	assert.False(t, def.Supports(ProtocolSyslog))
}

func TestMustDefinition_Panics(t *testing.T) {
	assert.Panics(t, func() { MustDefinition("") })
	assert.NotPanics(t, func() { MustDefinition(TCP) })
}

func TestDefinition_String(t *testing.T) {
	s := MustDefinition(TCP, ProtocolH2).String()
	assert.Contains(t, s, "TCP")
	assert.Contains(t, s, ProtocolH2)
}

func TestParseTransportProtocol(t *testing.T) {
	tests := []struct {
		input   string
		want    TransportProtocol
		wantErr bool
	}{
		{"tcp", TCP, false},
		{"UDP", UDP, false},
		{" Tcp ", TCP, false},
		{"icmp", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransportProtocol(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransportProtocol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransportProtocol_Network(t *testing.T) {
	assert.Equal(t, "tcp", TCP.Network())
	assert.Equal(t, "udp", UDP.Network())
	assert.Equal(t, "<unset>", TransportProtocol("").String())
	assert.Equal(t, []TransportProtocol{TCP, UDP}, TransportProtocols())
}
