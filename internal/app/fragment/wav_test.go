package fragment

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tone builds a mono 16-bit track of the given length at 1 kHz sample rate,
// so one frame is one millisecond.
func tone(ms int) *PCM {
	data := make([]byte, ms*2)
	for i := 0; i < ms; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(i))
	}
	return &PCM{SampleRate: 1000, Channels: 1, BitsPerSample: 16, Data: data}
}

func writeWAV(t *testing.T, pcm *PCM) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	require.NoError(t, os.WriteFile(path, pcm.Encode(), 0644))
	return path
}

func TestEncodeDecode(t *testing.T) {
	original := tone(250)

	decoded, err := DecodeWAV(bytes.NewReader(original.Encode()))

	require.NoError(t, err)
	assert.Equal(t, original, decoded)
	assert.Equal(t, 250, decoded.DurationMs())
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	encoded := tone(10).Encode()
	// splice a LIST chunk with an odd size (padded) between fmt and data
	var buf bytes.Buffer
	buf.Write(encoded[:36])
	buf.WriteString("LIST")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(3))
	buf.Write([]byte{'a', 'b', 'c', 0})
	buf.Write(encoded[36:])

	decoded, err := DecodeWAV(&buf)

	require.NoError(t, err)
	assert.Equal(t, 10, decoded.Frames())
}

func TestDecodeWAVRejectsInvalidInput(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("not a wav file at all")))
	assert.Error(t, err)

	_, err = DecodeWAV(bytes.NewReader(tone(10).Encode()[:36]))
	assert.Error(t, err)

	zeroBits := tone(10).Encode()
	binary.LittleEndian.PutUint16(zeroBits[34:36], 0)
	assert.NotPanics(t, func() {
		_, err = DecodeWAV(bytes.NewReader(zeroBits))
	})
	assert.ErrorContains(t, err, "0 bits")
}

func TestPCMSlice(t *testing.T) {
	pcm := tone(100)

	tests := []struct {
		name           string
		start, end     int
		expectedFrames int
	}{
		{"inner", 10, 30, 20},
		{"clamped end", 90, 200, 10},
		{"past end", 150, 200, 0},
		{"reversed", 50, 40, 0},
		{"negative start", -10, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedFrames, pcm.Slice(tt.start, tt.end).Frames())
		})
	}

	slice := pcm.Slice(10, 12)
	assert.Equal(t, uint16(10), binary.LittleEndian.Uint16(slice.Data[0:2]))
}

func TestReadWAV(t *testing.T) {
	pcm, err := ReadWAV(writeWAV(t, tone(42)))
	require.NoError(t, err)
	assert.Equal(t, 42, pcm.DurationMs())

	_, err = ReadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
