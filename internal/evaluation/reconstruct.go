package evaluation

// Reconstructor optionally rewrites a raw transcript before evaluation, for
// example to reinsert student questions that automatic captioning dropped.
type Reconstructor interface {
	Reconstruct(transcript string) (string, ReconstructionInfo)
}

// NoopReconstructor passes the transcript through unchanged. It is the default
// because synthetic augmentation distorts the engagement signals downstream.
type NoopReconstructor struct{}

func (NoopReconstructor) Reconstruct(transcript string) (string, ReconstructionInfo) {
	return transcript, ReconstructionInfo{
		Method:          "reconstruction_disabled",
		OriginalLength:  len(transcript),
		AugmentedLength: len(transcript),
		QuestionsAdded:  0,
	}
}
