package audio

// PCM is a decoded 16-bit audio buffer with its format attached.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// DownmixStereo averages interleaved stereo samples into a mono buffer.
// Mono input is returned as-is.
func DownmixStereo(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	mono := make([]int16, len(samples)/channels)
	for i := range mono {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(samples[i*channels+ch])
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}

// ResampleAndWiden converts mono PCM to interleaved stereo at the target
// rate. Nearest-sample interpolation is enough here: the input is synthetic
// TTS audio, not music.
func ResampleAndWiden(in PCM, targetRate int) PCM {
	mono := DownmixStereo(in.Samples, in.Channels)
	if in.SampleRate <= 0 || len(mono) == 0 {
		return PCM{SampleRate: targetRate, Channels: 2}
	}
	outLen := int(int64(len(mono)) * int64(targetRate) / int64(in.SampleRate))
	out := make([]int16, outLen*2)
	for i := 0; i < outLen; i++ {
		src := int(int64(i) * int64(in.SampleRate) / int64(targetRate))
		if src >= len(mono) {
			src = len(mono) - 1
		}
		out[i*2] = mono[src]
		out[i*2+1] = mono[src]
	}
	return PCM{Samples: out, SampleRate: targetRate, Channels: 2}
}
