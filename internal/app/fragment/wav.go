package fragment

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// PCM is an uncompressed interleaved audio track.
type PCM struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Data          []byte
}

// ReadWAV loads a RIFF/WAVE file holding integer PCM samples.
func ReadWAV(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

// DecodeWAV parses a RIFF/WAVE stream. Chunks other than "fmt " and "data" are skipped.
func DecodeWAV(r io.Reader) (*PCM, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("wav header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	pcm := &PCM{}
	haveFmt := false
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("wav stream has no data chunk")
			}
			return nil, fmt.Errorf("wav chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav fmt chunk too short: %d", size)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			if format != wavFormatPCM && format != wavFormatExtensible {
				return nil, fmt.Errorf("unsupported wav format %#x", format)
			}
			pcm.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			pcm.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			pcm.BitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			if pcm.Channels == 0 || pcm.SampleRate == 0 || pcm.BitsPerSample == 0 || pcm.BitsPerSample%8 != 0 {
				return nil, fmt.Errorf("invalid wav fmt: %d channels, %d Hz, %d bits", pcm.Channels, pcm.SampleRate, pcm.BitsPerSample)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("wav data chunk before fmt chunk")
			}
			data, err := io.ReadAll(io.LimitReader(r, int64(size)))
			if err != nil {
				return nil, fmt.Errorf("wav data chunk: %w", err)
			}
			// truncated streams keep whole frames only
			pcm.Data = data[:len(data)-len(data)%pcm.BlockAlign()]
			return pcm, nil
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("wav %q chunk: %w", id, err)
			}
		}
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && err != io.EOF {
				return nil, err
			}
		}
	}
}

// BlockAlign is the size in bytes of one frame across all channels.
func (p *PCM) BlockAlign() int {
	return p.Channels * p.BitsPerSample / 8
}

// Frames is the number of sample frames in the track.
func (p *PCM) Frames() int {
	if p.BlockAlign() == 0 {
		return 0
	}
	return len(p.Data) / p.BlockAlign()
}

// DurationMs is the track length in milliseconds, rounded to the nearest millisecond.
func (p *PCM) DurationMs() int {
	if p.SampleRate == 0 {
		return 0
	}
	return int(math.Round(1000 * float64(p.Frames()) / float64(p.SampleRate)))
}

// Slice returns the frames in [startMs, endMs), clamped to the track.
// The returned track shares its sample data with p.
func (p *PCM) Slice(startMs, endMs int) *PCM {
	from := p.frameAt(startMs)
	to := p.frameAt(endMs)
	if to < from {
		to = from
	}
	ba := p.BlockAlign()
	return &PCM{
		SampleRate:    p.SampleRate,
		Channels:      p.Channels,
		BitsPerSample: p.BitsPerSample,
		Data:          p.Data[from*ba : to*ba],
	}
}

func (p *PCM) frameAt(ms int) int {
	if ms <= 0 {
		return 0
	}
	n := int(int64(ms) * int64(p.SampleRate) / 1000)
	if n > p.Frames() {
		return p.Frames()
	}
	return n
}

// Encode renders the track as a standalone canonical WAV file.
func (p *PCM) Encode() []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(p.Data))

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(p.Data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(wavFormatPCM))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(p.Channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(p.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(p.SampleRate*p.BlockAlign()))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(p.BlockAlign()))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(p.BitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(p.Data)))
	buf.Write(p.Data)

	return buf.Bytes()
}
