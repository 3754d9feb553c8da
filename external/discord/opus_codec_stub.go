//go:build !opus

package discord

// Without the opus build tag the codec is a no-op: captured packets decode
// to nothing and playback produces no packets. Lets the bot compile and run
// where libopus is unavailable.

type noopCodec struct{}

func newPCMDecoder() (pcmDecoder, error) {
	return noopCodec{}, nil
}

func newPCMEncoder() (pcmEncoder, error) {
	return noopCodec{}, nil
}

func (noopCodec) Decode(_ []byte) ([]int16, error) {
	return nil, nil
}

func (noopCodec) Encode(_ []int16) ([]byte, error) {
	return nil, nil
}
