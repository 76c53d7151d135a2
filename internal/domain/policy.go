package domain

import (
	"fmt"
	"strings"
)

// StepKind names a post-processing operation applied after transfer.
type StepKind string

const (
	StepRemux        StepKind = "remux"
	StepTranscode    StepKind = "transcode"
	StepExtractAudio StepKind = "extract-audio"
)

// PostProcessStep is one post-transfer normalization operation.
type PostProcessStep struct {
	Kind      StepKind
	Container string
	Quality   string
}

// FormatPolicy is the negotiated download strategy for a batch: the stream
// selector handed to the engine plus the post-processing chain.
type FormatPolicy struct {
	FormatSelector      string
	PostProcessing      []PostProcessStep
	OutputContainerHint string
}

// Capability describes what the host environment can do.
type Capability struct {
	MuxerAvailable bool
}

// Mode carries the operator's quality preferences for a batch.
type Mode struct {
	AudioOnly       bool
	TargetMaxHeight int
}

// Negotiate resolves the format policy from host capability and requested
// mode. Without a muxer the selector stays pre-combined: separate video and
// audio streams could never be merged and would strand two partial files.
func Negotiate(cap Capability, mode Mode) FormatPolicy {
	if mode.AudioOnly {
		return FormatPolicy{
			FormatSelector: "bestaudio/best",
			PostProcessing: []PostProcessStep{
				{Kind: StepExtractAudio, Container: "mp3", Quality: "192K"},
			},
			OutputContainerHint: "mp3",
		}
	}

	if !cap.MuxerAvailable {
		return FormatPolicy{FormatSelector: "best"}
	}

	selector := "bestvideo*+bestaudio/best"
	if mode.TargetMaxHeight > 0 {
		selector = fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]/best",
			mode.TargetMaxHeight, mode.TargetMaxHeight)
	}
	return FormatPolicy{
		FormatSelector: selector,
		PostProcessing: []PostProcessStep{
			{Kind: StepRemux, Container: "mp4"},
			{Kind: StepTranscode, Container: "mp4"},
		},
		OutputContainerHint: "mp4",
	}
}

// RequestsSeparateStreams reports whether the selector asks the engine to
// download video and audio as distinct streams that must be merged.
func (p FormatPolicy) RequestsSeparateStreams() bool {
	return strings.Contains(p.FormatSelector, "+")
}

// ExtractsAudio reports whether the policy ends in an audio-extraction step.
func (p FormatPolicy) ExtractsAudio() bool {
	for _, step := range p.PostProcessing {
		if step.Kind == StepExtractAudio {
			return true
		}
	}
	return false
}

// Describe renders the policy for logs.
func (p FormatPolicy) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "format=%s", p.FormatSelector)
	for _, step := range p.PostProcessing {
		fmt.Fprintf(&b, " %s->%s", step.Kind, step.Container)
	}
	if p.OutputContainerHint != "" {
		fmt.Fprintf(&b, " out=.%s", p.OutputContainerHint)
	}
	return b.String()
}
