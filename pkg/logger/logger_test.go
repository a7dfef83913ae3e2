package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

func TestNamedRequiresInit(t *testing.T) {
	Log = nil
	_, err := Named("http")
	assert.Error(t, err)
}

func TestLogHookReceivesEntries(t *testing.T) {
	require.NoError(t, Init(Config{Debug: true, JSON: true, TimeLocation: time.UTC}))
	t.Cleanup(func() {
		logHook = nil
		Log = nil
	})

	var got []types.Log
	SetLogHook(func(log types.Log) {
		got = append(got, log)
	})

	l, err := Named("retention")
	require.NoError(t, err)
	assert.Equal(t, "retention", l.Name)

	l.Errorf("failed to delete %d events", 3)

	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, zapcore.ErrorLevel, last.Level)
	assert.Equal(t, "main.retention", last.LoggerName)
	assert.Equal(t, "failed to delete 3 events", last.Message)
}

func TestNop(t *testing.T) {
	l := Nop("test")
	assert.NotPanics(t, func() { l.Infof("ignored %s", "entry") })
}
