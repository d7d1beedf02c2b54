package domain

// Stats accumulates counters over a single run. The scanner mutates it
// incrementally and the CLI reads it once at the end to print a summary.
type Stats struct {
	TotalFound  int // episodes returned by the lister
	Downloaded  int // audio files fetched this run
	Skipped     int // episodes already recorded as processed
	Failed      int // per-episode download or transcription failures
	Transcribed int // transcripts written this run
}
