package edvs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-edvs/logger"
	"github.com/arloliu/go-edvs/transport"
)

func TestConfig_BiasRoundTrip(t *testing.T) {
	require := require.New(t)

	dev, port := openTestDevice(t)

	for id := BiasID(0); id < BiasCount; id++ {
		v, err := dev.ConfigGet(ConfigBias, uint8(id))
		require.NoError(err)
		require.Zero(v, "bias %s before set", id)
	}

	for id := BiasID(0); id < BiasCount; id++ {
		value := uint32(id)*1000003 + 7
		require.NoError(dev.ConfigSet(ConfigBias, uint8(id), value))

		got, err := dev.ConfigGet(ConfigBias, uint8(id))
		require.NoError(err)
		require.Equal(value, got, "bias %s", id)
	}

	port.ResetWrittenData()
	require.NoError(dev.ConfigSet(ConfigBias, uint8(BiasPuX), MaxBiasValue))
	require.Equal([]byte(fmt.Sprintf("!B3=%d\n!BF\n", MaxBiasValue)), port.WrittenData())
}

func TestConfig_BiasRejectsInvalid(t *testing.T) {
	require := require.New(t)

	dev, port := openTestDevice(t)
	require.NoError(dev.ConfigSet(ConfigBias, uint8(BiasFoll), 271))
	port.ResetWrittenData()

	err := dev.ConfigSet(ConfigBias, uint8(BiasFoll), MaxBiasValue+1)
	require.ErrorIs(err, ErrInvalidConfigValue)

	err = dev.ConfigSet(ConfigBias, BiasCount, 1)
	require.ErrorIs(err, ErrUnknownConfigAddress)

	_, err = dev.ConfigGet(ConfigBias, BiasCount)
	require.ErrorIs(err, ErrUnknownConfigAddress)

	v, err := dev.ConfigGet(ConfigBias, uint8(BiasFoll))
	require.NoError(err)
	require.Equal(uint32(271), v)
	require.Empty(port.WrittenData())
}

func TestConfig_UnknownAddresses(t *testing.T) {
	dev, port := openTestDevice(t)

	tests := []struct {
		module int16
		param  uint8
	}{
		{-1, 0},
		{-6, 0},
		{2, 0},
		{HostConfigSerial, 1},
		{HostConfigDataExchange, 4},
		{HostConfigPackets, 2},
		{HostConfigLog, 1},
		{ConfigDVS, 2},
	}

	for _, tt := range tests {
		err := dev.ConfigSet(tt.module, tt.param, 1)
		assert.ErrorIs(t, err, ErrUnknownConfigAddress, "set %d/%d", tt.module, tt.param)

		_, err = dev.ConfigGet(tt.module, tt.param)
		assert.ErrorIs(t, err, ErrUnknownConfigAddress, "get %d/%d", tt.module, tt.param)
	}
	require.Empty(t, port.WrittenData())
}

func TestConfig_HostDefaults(t *testing.T) {
	dev, _ := openTestDevice(t)

	tests := []struct {
		module int16
		param  uint8
		want   uint32
	}{
		{HostConfigSerial, SerialReadSize, DefaultReadSize},
		{HostConfigDataExchange, DataExchangeBufferSize, DefaultBufferSize},
		{HostConfigDataExchange, DataExchangeBlocking, 0},
		{HostConfigDataExchange, DataExchangeStartProducers, 1},
		{HostConfigDataExchange, DataExchangeStopProducers, 1},
		{HostConfigPackets, PacketsMaxContainerPacketSize, DefaultMaxContainerPacketSize},
		{HostConfigPackets, PacketsMaxContainerInterval, DefaultMaxContainerInterval},
		{HostConfigLog, LogLevel, DefaultLogLevel},
		{ConfigDVS, DVSRun, 0},
		{ConfigDVS, DVSTimestampReset, 0},
	}

	for _, tt := range tests {
		got, err := dev.ConfigGet(tt.module, tt.param)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%d/%d", tt.module, tt.param)
	}
}

func TestConfig_HostRanges(t *testing.T) {
	dev, _ := openTestDevice(t)

	tests := []struct {
		name    string
		module  int16
		param   uint8
		value   uint32
		wantErr bool
	}{
		{"read size zero", HostConfigSerial, SerialReadSize, 0, true},
		{"read size max", HostConfigSerial, SerialReadSize, MaxReadSize, false},
		{"read size too large", HostConfigSerial, SerialReadSize, MaxReadSize + 1, true},
		{"buffer size zero", HostConfigDataExchange, DataExchangeBufferSize, 0, true},
		{"buffer size max", HostConfigDataExchange, DataExchangeBufferSize, MaxBufferSize, false},
		{"buffer size too large", HostConfigDataExchange, DataExchangeBufferSize, MaxBufferSize + 1, true},
		{"blocking not boolean", HostConfigDataExchange, DataExchangeBlocking, 2, true},
		{"packet size disabled", HostConfigPackets, PacketsMaxContainerPacketSize, 0, false},
		{"interval disabled", HostConfigPackets, PacketsMaxContainerInterval, 0, false},
		{"log level too large", HostConfigLog, LogLevel, MaxLogLevel + 1, true},
		{"dvs run not boolean", ConfigDVS, DVSRun, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := dev.ConfigGet(tt.module, tt.param)
			require.NoError(t, err)

			err = dev.ConfigSet(tt.module, tt.param, tt.value)
			if !tt.wantErr {
				require.NoError(t, err)
				got, err := dev.ConfigGet(tt.module, tt.param)
				require.NoError(t, err)
				require.Equal(t, tt.value, got)

				return
			}

			require.ErrorIs(t, err, ErrInvalidConfigValue)
			after, err := dev.ConfigGet(tt.module, tt.param)
			require.NoError(t, err)
			require.Equal(t, before, after)
		})
	}
}

func TestConfig_SendDefaultConfig(t *testing.T) {
	require := require.New(t)

	dev, port := openTestDevice(t)
	mustSet(t, dev, HostConfigDataExchange, DataExchangeBlocking, 1)
	mustSet(t, dev, HostConfigPackets, PacketsMaxContainerInterval, 1)
	mustSet(t, dev, HostConfigLog, LogLevel, 3)

	require.NoError(dev.SendDefaultConfig())

	var want string
	for id := BiasID(0); id < BiasCount; id++ {
		want += fmt.Sprintf("!B%d=%d\n!BF\n", id, DefaultBias(id))

		v, err := dev.ConfigGet(ConfigBias, uint8(id))
		require.NoError(err)
		require.Equal(DefaultBias(id), v, "bias %s", id)
	}
	require.Equal(want, string(port.WrittenData()))

	v, err := dev.ConfigGet(HostConfigDataExchange, DataExchangeBlocking)
	require.NoError(err)
	require.Zero(v)

	v, err = dev.ConfigGet(HostConfigPackets, PacketsMaxContainerInterval)
	require.NoError(err)
	require.Equal(uint32(DefaultMaxContainerInterval), v)

	v, err = dev.ConfigGet(HostConfigLog, LogLevel)
	require.NoError(err)
	require.Equal(uint32(3), v)
}

func TestConfig_DVSRun(t *testing.T) {
	require := require.New(t)

	dev, port := openTestDevice(t)

	mustSet(t, dev, ConfigDVS, DVSRun, 1)
	v, err := dev.ConfigGet(ConfigDVS, DVSRun)
	require.NoError(err)
	require.Equal(uint32(1), v)

	mustSet(t, dev, ConfigDVS, DVSRun, 0)
	v, err = dev.ConfigGet(ConfigDVS, DVSRun)
	require.NoError(err)
	require.Zero(v)

	require.Equal([]byte("E+\nE-\n"), port.WrittenData())
}

func TestConfig_TimestampResetWhileStopped(t *testing.T) {
	require := require.New(t)

	dev, port := openTestDevice(t)
	mustSet(t, dev, ConfigDVS, DVSTimestampReset, 1)

	require.Equal([]byte("!ET\n"), port.WrittenData())
	require.False(dev.tsResetRequest.Load())
}

func TestConfig_LogLevel(t *testing.T) {
	require := require.New(t)

	mockLogger := logger.NewMockLogger().AllowAll()
	mockLogger.On("SetLevel", logger.DebugLevel).Once()
	mockLogger.On("SetLevel", logger.WarnLevel).Once()

	port := transport.NewTestablePort()
	dev, err := Open(1, "/dev/ttyLOG", testBaudRate, WithPortOpener(port.Opener()), WithLogger(mockLogger))
	require.NoError(err)
	defer dev.Close()

	require.NoError(dev.ConfigSet(HostConfigLog, LogLevel, 7))
	require.NoError(dev.ConfigSet(HostConfigLog, LogLevel, 4))

	v, err := dev.ConfigGet(HostConfigLog, LogLevel)
	require.NoError(err)
	require.Equal(uint32(4), v)

	mockLogger.AssertExpectations(t)
	mockLogger.AssertNumberOfCalls(t, "SetLevel", 2)
}

func TestConfig_WithLogLevelAppliedAtOpen(t *testing.T) {
	mockLogger := logger.NewMockLogger().AllowAll()
	mockLogger.On("SetLevel", logger.ErrorLevel).Once()

	port := transport.NewTestablePort()
	dev, err := Open(1, "/dev/ttyLOGLEVEL", testBaudRate,
		WithPortOpener(port.Opener()), WithLogger(mockLogger), WithLogLevel(2))
	require.NoError(t, err)
	defer dev.Close()

	v, err := dev.ConfigGet(HostConfigLog, LogLevel)
	require.NoError(t, err)
	require.Equal(t, uint32(2), v)
	mockLogger.AssertCalled(t, "SetLevel", mock.Anything)
}

func TestToLoggerLevel(t *testing.T) {
	want := []logger.LogLevel{
		logger.ErrorLevel, logger.ErrorLevel, logger.ErrorLevel, logger.ErrorLevel,
		logger.WarnLevel,
		logger.InfoLevel, logger.InfoLevel,
		logger.DebugLevel,
	}

	for level, w := range want {
		assert.Equal(t, w, toLoggerLevel(uint32(level)), "level %d", level) //nolint:gosec
	}
}

func TestParseBiasID(t *testing.T) {
	id, err := ParseBiasID(11)
	require.NoError(t, err)
	require.Equal(t, BiasPr, id)
	require.Equal(t, "PR", id.String())
	require.Equal(t, "BiasID(12)", BiasID(12).String())

	_, err = ParseBiasID(12)
	require.ErrorIs(t, err, ErrUnknownConfigAddress)
}
