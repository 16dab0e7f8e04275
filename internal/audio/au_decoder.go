// Package audio 把 Sun/NeXT (.au) 音频解码为 ebiten 播放器使用的 16 位立体声小端 PCM。
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	auMagic         = 0x2e736e64 // ".snd"
	auHeaderSize    = 24
	auEncodingULaw  = 1
	auEncodingPCM16 = 3
)

type auHeader struct {
	Magic      uint32
	DataOffset uint32
	DataSize   uint32 // 未知时为 0xFFFFFFFF
	Encoding   uint32
	SampleRate uint32
	Channels   uint32
}

// mulawTable μ-law 字节到 16 位采样的映射表
var mulawTable = [256]int16{
	-32124, -31100, -30076, -29052, -28028, -27004, -25980, -24956,
	-23932, -22908, -21884, -20860, -19836, -18812, -17788, -16764,
	-15996, -15484, -14972, -14460, -13948, -13436, -12924, -12412,
	-11900, -11388, -10876, -10364, -9852, -9340, -8828, -8316,
	-7932, -7676, -7420, -7164, -6908, -6652, -6396, -6140,
	-5884, -5628, -5372, -5116, -4860, -4604, -4348, -4092,
	-3900, -3772, -3644, -3516, -3388, -3260, -3132, -3004,
	-2876, -2748, -2620, -2492, -2364, -2236, -2108, -1980,
	-1884, -1820, -1756, -1692, -1628, -1564, -1500, -1436,
	-1372, -1308, -1244, -1180, -1116, -1052, -988, -924,
	-876, -844, -812, -780, -748, -716, -684, -652,
	-620, -588, -556, -524, -492, -460, -428, -396,
	-372, -356, -340, -324, -308, -292, -276, -260,
	-244, -228, -212, -196, -180, -164, -148, -132,
	-120, -112, -104, -96, -88, -80, -72, -64,
	-56, -48, -40, -32, -24, -16, -8, 0,
	32124, 31100, 30076, 29052, 28028, 27004, 25980, 24956,
	23932, 22908, 21884, 20860, 19836, 18812, 17788, 16764,
	15996, 15484, 14972, 14460, 13948, 13436, 12924, 12412,
	11900, 11388, 10876, 10364, 9852, 9340, 8828, 8316,
	7932, 7676, 7420, 7164, 6908, 6652, 6396, 6140,
	5884, 5628, 5372, 5116, 4860, 4604, 4348, 4092,
	3900, 3772, 3644, 3516, 3388, 3260, 3132, 3004,
	2876, 2748, 2620, 2492, 2364, 2236, 2108, 1980,
	1884, 1820, 1756, 1692, 1628, 1564, 1500, 1436,
	1372, 1308, 1244, 1180, 1116, 1052, 988, 924,
	876, 844, 812, 780, 748, 716, 684, 652,
	620, 588, 556, 524, 492, 460, 428, 396,
	372, 356, 340, 324, 308, 292, 276, 260,
	244, 228, 212, 196, 180, 164, 148, 132,
	120, 112, 104, 96, 88, 80, 72, 64,
	56, 48, 40, 32, 24, 16, 8, 0,
}

// Stream 解码后的 .au 数据，实现 io.ReadSeeker，
// 并像 ebiten 的 wav/mp3/vorbis 流一样提供长度和采样率。
type Stream struct {
	*bytes.Reader
	sampleRate int
}

// SampleRate 返回源采样率（Hz）
func (s *Stream) SampleRate() int { return s.sampleRate }

// Length 返回解码后的字节数
func (s *Stream) Length() int64 { return s.Size() }

// DecodeAU 解码 μ-law 或 16 位线性编码的 .au 数据，单声道会复制到左右声道
func DecodeAU(r io.Reader) (*Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read AU data: %w", err)
	}
	if len(data) < auHeaderSize {
		return nil, fmt.Errorf("AU data too short: %d bytes", len(data))
	}

	var h auHeader
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to read AU header: %w", err)
	}
	if h.Magic != auMagic {
		return nil, fmt.Errorf("invalid AU magic number 0x%08x", h.Magic)
	}
	if h.Channels < 1 || h.Channels > 2 {
		return nil, fmt.Errorf("unsupported AU channel count %d", h.Channels)
	}
	if h.SampleRate == 0 {
		return nil, fmt.Errorf("AU sample rate is zero")
	}
	if h.DataOffset < auHeaderSize || int(h.DataOffset) > len(data) {
		return nil, fmt.Errorf("invalid AU data offset %d", h.DataOffset)
	}
	body := data[h.DataOffset:]
	if h.DataSize != 0xFFFFFFFF && int(h.DataSize) < len(body) {
		body = body[:h.DataSize]
	}

	var samples []int16
	switch h.Encoding {
	case auEncodingULaw:
		samples = make([]int16, len(body))
		for i, b := range body {
			samples[i] = mulawTable[b]
		}
	case auEncodingPCM16:
		samples = make([]int16, len(body)/2)
		for i := range samples {
			samples[i] = int16(binary.BigEndian.Uint16(body[i*2:]))
		}
	default:
		return nil, fmt.Errorf("unsupported AU encoding %d (supported: 1 μ-law, 3 linear16)", h.Encoding)
	}

	channels := int(h.Channels)
	frames := len(samples) / channels
	pcm := make([]byte, frames*4)
	for f := 0; f < frames; f++ {
		left := samples[f*channels]
		right := left
		if channels == 2 {
			right = samples[f*channels+1]
		}
		binary.LittleEndian.PutUint16(pcm[f*4:], uint16(left))
		binary.LittleEndian.PutUint16(pcm[f*4+2:], uint16(right))
	}
	return &Stream{Reader: bytes.NewReader(pcm), sampleRate: int(h.SampleRate)}, nil
}
