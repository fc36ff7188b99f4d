package asyncval

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signadot/ncnf/ir"
	"github.com/stretchr/testify/require"
)

const checkExists = "test -f " + ConfigFileArg

func wait(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("validator did not finish")
	}
}

func TestGateSuccess(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "app.conf")
	require.NoError(t, os.WriteFile(conf, []byte("a 1;\n"), 0o644))
	s := &Session{}
	ctx := context.Background()

	_, err := s.Gate(ctx, checkExists, conf)
	require.ErrorIs(t, err, ErrAgain)
	wait(t, s)
	require.Equal(t, Succeeded, s.State())

	skip, err := s.Gate(ctx, checkExists, conf)
	require.NoError(t, err)
	require.True(t, skip)
	require.Equal(t, NoState, s.State())
}

func TestGateFailure(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "missing.conf")
	s := &Session{}
	ctx := context.Background()

	_, err := s.Gate(ctx, checkExists, conf)
	require.ErrorIs(t, err, ErrAgain)
	wait(t, s)
	require.Equal(t, Failed, s.State())
	require.Error(t, s.Err())

	skip, err := s.Gate(ctx, checkExists, conf)
	require.ErrorIs(t, err, ir.ErrInvalid)
	require.False(t, skip)
	require.Equal(t, NoState, s.State())
	require.NoError(t, s.Err())
}

func TestGateInProgress(t *testing.T) {
	s := &Session{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := s.Gate(ctx, "sleep 30", "unused")
	require.ErrorIs(t, err, ErrAgain)
	require.Equal(t, InProgress, s.State())
	_, err = s.Gate(ctx, "sleep 30", "unused")
	require.ErrorIs(t, err, ErrAgain)
	require.ErrorIs(t, s.Start(ctx, "sleep 30", "unused"), ErrAgain)

	cancel()
	wait(t, s)
	require.Equal(t, Failed, s.State())
}

func TestGateCannotStart(t *testing.T) {
	for _, cmd := range []string{"", "  ", "/nonexistent/validator " + ConfigFileArg} {
		s := &Session{}
		skip, err := s.Gate(context.Background(), cmd, "app.conf")
		require.NoError(t, err, "command %q", cmd)
		require.False(t, skip)
		require.Equal(t, NoState, s.State())
	}
}

func TestDoneWithoutRun(t *testing.T) {
	s := &Session{}
	select {
	case <-s.Done():
	default:
		t.Fatal("done channel open without a run")
	}
	s.Reset()
	require.Equal(t, NoState, s.State())
}
