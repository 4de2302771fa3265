package domain

// EstimateSizeBytes derives an approximate payload size from total bitrate
// and duration (kbps * 1000 / 8 * seconds). Returns nil when either input
// is unknown, in which case the format is treated as unbounded for budget
// purposes.
func EstimateSizeBytes(bitrateKbps *float64, duration *float64) *int64 {
	if bitrateKbps == nil || duration == nil {
		return nil
	}
	size := int64(*bitrateKbps * 1000 / 8 * *duration)
	return &size
}

// NormalizeFormats backfills missing sizes on a raw adapter format list
// using the bitrate/duration estimate. The input slice is not modified.
func NormalizeFormats(formats []Format, duration *float64) []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	for i := range out {
		if out[i].SizeBytes == nil {
			out[i].SizeBytes = EstimateSizeBytes(out[i].BitrateKbps, duration)
		}
	}
	return out
}

// SelectForBudget picks the format to download. With audioOnly it returns
// the best audio format without size filtering (audio is rarely oversized).
// Otherwise it returns the largest video+audio format whose known size fits
// budgetBytes; formats with unknown size are excluded. ok=false means the
// caller must offer the explicit audio-only fallback instead of silently
// degrading. Selection is deterministic for a given input list.
func SelectForBudget(formats []Format, budgetBytes int64, audioOnly bool) (Format, bool) {
	if audioOnly {
		return selectBestAudio(formats)
	}

	var best Format
	var bestSize int64 = -1
	for _, f := range formats {
		if !f.HasVideo || !f.HasAudio || f.SizeBytes == nil {
			continue
		}
		if *f.SizeBytes > budgetBytes {
			continue
		}
		if *f.SizeBytes > bestSize {
			best = f
			bestSize = *f.SizeBytes
		}
	}
	if bestSize < 0 {
		return Format{}, false
	}
	return best, true
}

func selectBestAudio(formats []Format) (Format, bool) {
	var best Format
	var bestRate float64 = -1
	found := false

	// Prefer audio-only representations over muxed ones.
	for _, f := range formats {
		if !f.HasAudio || f.HasVideo {
			continue
		}
		rate := 0.0
		if f.BitrateKbps != nil {
			rate = *f.BitrateKbps
		}
		if !found || rate > bestRate {
			best = f
			bestRate = rate
			found = true
		}
	}
	if found {
		return best, true
	}

	for _, f := range formats {
		if f.HasAudio {
			return f, true
		}
	}
	return Format{}, false
}

// HasVideoFormats reports whether any format carries a video stream.
func HasVideoFormats(formats []Format) bool {
	for _, f := range formats {
		if f.HasVideo {
			return true
		}
	}
	return false
}

// HasAudioFormats reports whether any format carries an audio stream.
func HasAudioFormats(formats []Format) bool {
	for _, f := range formats {
		if f.HasAudio {
			return true
		}
	}
	return false
}
