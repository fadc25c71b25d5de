package ipc

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeFrameIsLittleEndianLengthPrefixed(t *testing.T) {
	frame, err := Envelope{Payload: []byte("myapp://x")}.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{9, 0, 0, 0}, frame[:HeaderSize])
	require.Equal(t, "myapp://x", string(frame[HeaderSize:]))

	empty, err := Envelope{}.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, empty)
}

func TestReadEnvelopeAcrossPartialReads(t *testing.T) {
	var buf bytes.Buffer
	_, err := Envelope{Payload: []byte("-OpenMenu -Foo bar")}.WriteTo(&buf)
	require.NoError(t, err)

	env, err := ReadEnvelope(iotest.OneByteReader(&buf), 0)
	require.NoError(t, err)
	require.Equal(t, "-OpenMenu -Foo bar", string(env.Payload))
}

func TestReadEnvelopeFailures(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		limit uint32
		want  error
	}{
		{name: "no bytes", input: nil, want: ErrTruncated},
		{name: "partial header", input: []byte{10, 0}, want: ErrTruncated},
		{name: "short payload", input: []byte{10, 0, 0, 0, 'a', 'b', 'c', 'd'}, want: ErrTruncated},
		{name: "over limit", input: []byte{10, 0, 0, 0}, limit: 4, want: ErrPayloadTooLarge},
		{name: "over default limit", input: []byte{0, 0, 0, 0x40}, want: ErrPayloadTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadEnvelope(bytes.NewReader(tc.input), tc.limit)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReadEnvelopeWrapsReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadEnvelope(io.MultiReader(bytes.NewReader([]byte{3, 0}), iotest.ErrReader(boom)), 0)
	require.ErrorIs(t, err, ErrTruncated)
	require.ErrorIs(t, err, boom)
}

func TestReadEnvelopeZeroLength(t *testing.T) {
	env, err := ReadEnvelope(bytes.NewReader([]byte{0, 0, 0, 0}), 0)
	require.NoError(t, err)
	require.Empty(t, env.Payload)
}
