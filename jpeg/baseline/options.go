package baseline

import "fmt"

// DecodeOptions controls decoder behavior beyond the strict defaults.
type DecodeOptions struct {
	// RestartResync enables best-effort recovery when a restart marker is
	// missing or out of sequence: the decoder byte-aligns, scans forward to
	// the expected marker and resumes with fresh DC predictors. By default
	// any restart violation fails the decode.
	RestartResync bool
}

// EncodeOptions controls the encoder.
type EncodeOptions struct {
	// Quality in 1..100. 50 keeps the reference quantization tables
	// unscaled; higher is better quality.
	Quality int

	// RestartInterval, when positive, emits a restart marker after every
	// RestartInterval MCUs and resets the DC predictors.
	RestartInterval int
}

// Validate checks the encoder options.
func (o EncodeOptions) Validate() error {
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("quality %d outside 1..100", o.Quality)
	}
	if o.RestartInterval < 0 || o.RestartInterval > 0xFFFF {
		return fmt.Errorf("restart interval %d outside 0..65535", o.RestartInterval)
	}
	return nil
}
