package aww

import (
	"bufio"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest_Wire(t *testing.T) {
	t.Parallel()

	// RRC_SIB7 (157) with payload 01 80 00.
	got := EncodeRequest(157, []byte{0x01, 0x80, 0x00})
	want := []byte{0x00, 0x00, 0x00, 0x9D, 0x00, 0x00, 0x00, 0x03, 0x01, 0x80, 0x00}
	assert.Equal(t, want, got)
}

func TestEncodeRequest_EmptyPayload(t *testing.T) {
	t.Parallel()

	got := EncodeRequest(200, nil)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0xC8, 0x00, 0x00, 0x00, 0x00}, got)
	assert.Len(t, got, HeaderSize)
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code    uint32
		payload []byte
	}{
		{0, nil},
		{100, []byte{0xFF}},
		{250, make([]byte, 1024)},
		{math.MaxUint32, []byte{1, 2, 3}},
	}

	for _, tc := range cases {
		encoded := EncodeRequest(tc.code, tc.payload)
		code, length, err := DecodeHeader(encoded)
		require.NoError(t, err)
		assert.Equal(t, tc.code, code)
		assert.Equal(t, uint32(len(tc.payload)), length)
	}
}

func TestDecodeHeader_TooShort(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeHeader([]byte{0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestReadResponse(t *testing.T) {
	t.Parallel()

	for n := 0; n <= 3; n++ {
		var in strings.Builder
		var want strings.Builder
		for i := 0; i < n; i++ {
			line := fmt.Sprintf("line %d\n", i)
			in.WriteString(line)
			want.WriteString(line)
		}
		in.WriteString(Sentinel + "\n")

		got, err := ReadResponse(bufio.NewReader(strings.NewReader(in.String())))
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, want.String(), got, "n=%d", n)
	}
}

func TestReadResponse_SentinelPrefixMatches(t *testing.T) {
	t.Parallel()

	// The dissector terminates lines after the token; a prefix match is
	// enough, mirroring the wrapper contract.
	r := bufio.NewReader(strings.NewReader("dissected\n" + Sentinel + " trailing\nafter\n"))
	got, err := ReadResponse(r)
	require.NoError(t, err)
	assert.Equal(t, "dissected\n", got)

	// Content past the sentinel line stays in the reader for the next call.
	rest, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "after\n", rest)
}

func TestReadResponse_EOFBeforeSentinel(t *testing.T) {
	t.Parallel()

	_, err := ReadResponse(bufio.NewReader(strings.NewReader("partial output\n")))
	require.Error(t, err)

	_, err = ReadResponse(bufio.NewReader(strings.NewReader("no trailing newline")))
	require.Error(t, err)
}
