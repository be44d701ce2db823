package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := New().SetOutput(&buf).SetFormat("json").Build()
	require.NoError(t, err)
	defer func() { assert.NoError(t, cleanup()) }()

	logger.Info(context.Background(), "connected", Connection("logs"), Attempt(2), MaxAttempts(10))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "connected", rec["msg"])
	assert.Equal(t, "logs", rec[KeyConnection])
	assert.InDelta(t, 2, rec[KeyAttempt], 0)
	assert.InDelta(t, 10, rec[KeyMaxAttempts], 0)
}

func TestBuild_FirstErrorWins(t *testing.T) {
	_, _, err := New().SetLevelString("verbose").SetFormat("xml").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")
}

func TestBuild_UnknownFormat(t *testing.T) {
	_, _, err := New().SetFormat("xml").Build()
	assert.Error(t, err)
}

func TestBuild_EmptyRotationFilename(t *testing.T) {
	_, _, err := New().SetRotation("  ").Build()
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestBuild_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xchkit.log")
	logger, cleanup, err := New().SetRotation(path, WithMaxSize(1), WithMaxBackups(1), WithCompress(false)).Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "hello")
	require.NoError(t, cleanup())
	// 清理函数可重复调用
	require.NoError(t, cleanup())
	assert.FileExists(t, path)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New().SetOutput(&buf).SetLevel(LevelWarn).Build()
	require.NoError(t, err)

	ctx := context.Background()
	logger.Info(ctx, "hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, logger.Enabled(ctx, LevelInfo))

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())
	logger.Debug(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWith_SharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New().SetOutput(&buf).Build()
	require.NoError(t, err)

	child := logger.With(Component("xclickhouse"))
	logger.SetLevel(LevelError)
	child.Warn(context.Background(), "suppressed")
	assert.Zero(t, buf.Len())

	child.Error(context.Background(), "boom", Err(errors.New("bad")))
	assert.Contains(t, buf.String(), "component=xclickhouse")
	assert.Contains(t, buf.String(), "error=bad")
	assert.Same(t, logger, logger.With())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestOnError_CountsAndRecovers(t *testing.T) {
	var seen error
	logger, _, err := New().SetOutput(failingWriter{}).SetOnError(func(err error) {
		seen = err
		panic("callback panic")
	}).Build()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		logger.Error(context.Background(), "lost")
	})
	require.Error(t, seen)
	assert.Equal(t, uint64(2), ErrorCount(logger))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"trace", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_TextRoundTrip(t *testing.T) {
	var l Level
	require.NoError(t, l.UnmarshalText([]byte("warn")))
	assert.Equal(t, "WARN", l.String())
	assert.Error(t, l.UnmarshalText([]byte("nope")))
}

func TestErr_Nil(t *testing.T) {
	assert.True(t, Err(nil).Equal(Err(nil)))
	assert.Empty(t, Err(nil).Key)
}

func TestDefaultAndDiscard(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.NotPanics(t, func() {
		Discard().Info(context.Background(), "ignored")
	})
}
