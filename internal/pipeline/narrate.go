package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/medbrief/pkg/formatting"
	"github.com/JaimeStill/medbrief/pkg/speech"
)

const (
	scriptSentences = 3
	scriptRedFlags  = 2
)

// Narration is the outcome of the audio side channel. Exactly one of Audio
// (base64 MPEG) and Err is set.
type Narration struct {
	Audio string
	Err   error
}

// OK reports whether audio was produced.
func (n Narration) OK() bool {
	return n.Err == nil && n.Audio != ""
}

// AudioPtr returns the audio for storage, nil when narration failed.
func (n Narration) AudioPtr() *string {
	if !n.OK() {
		return nil
	}
	return &n.Audio
}

// Script builds the spoken brief: a lead-in naming the patient, the opening
// sentences of the synopsis, the first red flags or an all-clear, and the
// first watch point when present.
func Script(patientName string, b Brief) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Brief patient %s.", strings.TrimSpace(patientName)))

	if s := leadingSentences(b.ResumeClinique, scriptSentences); s != "" {
		parts = append(parts, s)
	}

	if len(b.RedFlags) > 0 {
		flags := b.RedFlags[:min(len(b.RedFlags), scriptRedFlags)]
		parts = append(parts, "Attention : "+sentence(strings.Join(flags, ". ")))
	} else {
		parts = append(parts, "Pas de red flag critique.")
	}

	if len(b.PointsDeVigilance) > 0 {
		parts = append(parts, "À surveiller : "+sentence(b.PointsDeVigilance[0]))
	}

	return strings.Join(parts, " ")
}

func leadingSentences(text string, n int) string {
	var out []string
	for s := range strings.SplitSeq(text, ".") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s+".")
		if len(out) == n {
			break
		}
	}
	return strings.Join(out, " ")
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}

func narrate(ctx context.Context, rt *Runtime, patientName string, b Brief) Narration {
	if rt.Speech == nil || !rt.Speech.Configured() {
		return Narration{Err: speech.ErrNotConfigured}
	}

	audio, err := rt.Speech.Synthesize(ctx, Script(patientName, b))
	if err != nil {
		return Narration{Err: err}
	}

	encoded, err := formatting.EncodeBase64(bytes.NewReader(audio))
	if err != nil {
		return Narration{Err: fmt.Errorf("%w: encode audio: %w", speech.ErrSynthesis, err)}
	}
	if encoded == "" {
		return Narration{Err: errors.New("empty audio")}
	}

	return Narration{Audio: encoded}
}
