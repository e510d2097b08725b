package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestPortOptions_NormalizeDefaults(t *testing.T) {
	require := require.New(t)

	got, err := PortOptions{}.Normalize()
	require.NoError(err)
	require.Equal(DefaultBaudRate, got.BaudRate)
	require.Equal(8, got.DataBits)
	require.Equal(1, got.StopBits)
	require.Equal("N", got.Parity)
}

func TestPortOptions_NormalizeParity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "N"},
		{"none", "N"},
		{" even ", "E"},
		{"o", "O"},
		{"ODD", "O"},
	}

	for _, tt := range tests {
		got, err := PortOptions{Parity: tt.in}.Normalize()
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.Parity, tt.in)
	}
}

func TestPortOptions_NormalizeInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts PortOptions
	}{
		{"data bits low", PortOptions{DataBits: 4}},
		{"data bits high", PortOptions{DataBits: 9}},
		{"stop bits", PortOptions{StopBits: 3}},
		{"parity", PortOptions{Parity: "mark"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.Normalize()
			require.Error(t, err)
		})
	}
}

func TestPortOptions_SerialMode(t *testing.T) {
	require := require.New(t)

	mode, err := DefaultPortOptions(4000000).SerialMode()
	require.NoError(err)
	require.Equal(4000000, mode.BaudRate)
	require.Equal(8, mode.DataBits)
	require.Equal(serial.OneStopBit, mode.StopBits)
	require.Equal(serial.NoParity, mode.Parity)
	require.NotNil(mode.InitialStatusBits)
	require.True(mode.InitialStatusBits.RTS)

	mode, err = PortOptions{BaudRate: 115200, StopBits: 2, Parity: "E"}.SerialMode()
	require.NoError(err)
	require.Equal(serial.TwoStopBits, mode.StopBits)
	require.Equal(serial.EvenParity, mode.Parity)
	require.Nil(mode.InitialStatusBits)

	_, err = PortOptions{Parity: "x"}.SerialMode()
	require.Error(err)
}
