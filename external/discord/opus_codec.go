//go:build opus

package discord

import (
	"github.com/hraban/opus"
)

type opusPCMDecoder struct {
	dec *opus.Decoder
	buf []int16
}

func newPCMDecoder() (pcmDecoder, error) {
	dec, err := opus.NewDecoder(voiceSampleRate, voiceChannels)
	if err != nil {
		return nil, err
	}
	return &opusPCMDecoder{
		dec: dec,
		buf: make([]int16, voiceFrameSize*voiceChannels),
	}, nil
}

func (d *opusPCMDecoder) Decode(packet []byte) ([]int16, error) {
	n, err := d.dec.Decode(packet, d.buf)
	if err != nil {
		return nil, err
	}
	out := make([]int16, n*voiceChannels)
	copy(out, d.buf[:n*voiceChannels])
	return out, nil
}

type opusPCMEncoder struct {
	enc *opus.Encoder
	buf []byte
}

func newPCMEncoder() (pcmEncoder, error) {
	enc, err := opus.NewEncoder(voiceSampleRate, voiceChannels, opus.AppAudio)
	if err != nil {
		return nil, err
	}
	return &opusPCMEncoder{
		enc: enc,
		buf: make([]byte, 4000),
	}, nil
}

func (e *opusPCMEncoder) Encode(frame []int16) ([]byte, error) {
	n, err := e.enc.Encode(frame, e.buf)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, e.buf[:n])
	return out, nil
}
