package indicator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/director/internal/config"
)

func TestCueSamplesPresent(t *testing.T) {
	require.NotEmpty(t, cueSamples(cueRedirect))
	require.NotEmpty(t, cueSamples(cueFailure))
	require.Empty(t, cueSamples(cueKind(99)))
}

func TestSynthesizeToneDuration(t *testing.T) {
	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	want := samplesForDuration(100 * time.Millisecond)
	require.Len(t, got, want)
}

func TestSynthesizeToneInvalidSpecReturnsEmpty(t *testing.T) {
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0}))
}

func TestSynthesizeCueAddsGaps(t *testing.T) {
	tone := toneSpec{frequencyHz: 440, duration: 50 * time.Millisecond, volume: 0.2}
	got := synthesizeCue([]toneSpec{tone, tone})
	want := 2*samplesForDuration(50*time.Millisecond) + samplesForDuration(22*time.Millisecond)
	require.Len(t, got, want)
	require.Nil(t, synthesizeCue(nil))
}

func TestSamplesForDuration(t *testing.T) {
	require.Equal(t, 0, samplesForDuration(0))
	require.Greater(t, samplesForDuration(25*time.Millisecond), 0)
}

func TestEmitCueRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emitCue(ctx, cueRedirect, config.Default().Indicator)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestExpandUserPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, "", expandUserPath("  "))
	require.Equal(t, home, expandUserPath("~"))
	require.Equal(t, filepath.Join(home, "cue.wav"), expandUserPath("~/cue.wav"))
	require.Equal(t, "/abs/cue.wav", expandUserPath("/abs/cue.wav"))
}

func TestPlayCueFileRequiresExistingFile(t *testing.T) {
	err := playCueFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
