package pipeline_test

import (
	"testing"

	"github.com/JaimeStill/medbrief/internal/pipeline"
)

func TestScript(t *testing.T) {
	tests := []struct {
		name  string
		brief pipeline.Brief
		want  string
	}{
		{
			name: "red flags and watch point",
			brief: pipeline.Brief{
				ResumeClinique:    "Première phrase. Deuxième phrase. Troisième phrase. Quatrième phrase.",
				RedFlags:          []string{"Créatinine élevée", "Douleur thoracique", "Fièvre"},
				PointsDeVigilance: []string{"Surveiller la kaliémie"},
			},
			want: "Brief patient Jane Doe. Première phrase. Deuxième phrase. Troisième phrase. " +
				"Attention : Créatinine élevée. Douleur thoracique. À surveiller : Surveiller la kaliémie.",
		},
		{
			name:  "no red flags",
			brief: pipeline.Brief{ResumeClinique: "Bilan normal."},
			want:  "Brief patient Jane Doe. Bilan normal. Pas de red flag critique.",
		},
		{
			name:  "empty synopsis",
			brief: pipeline.Brief{RedFlags: []string{"Chute récente."}},
			want:  "Brief patient Jane Doe. Attention : Chute récente.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pipeline.Script("Jane Doe", tt.brief); got != tt.want {
				t.Errorf("Script() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestNarrationOutcome(t *testing.T) {
	ok := pipeline.Narration{Audio: "SUQz"}
	if !ok.OK() || ok.AudioPtr() == nil || *ok.AudioPtr() != "SUQz" {
		t.Error("successful narration not reported")
	}

	var failed pipeline.Narration
	if failed.OK() || failed.AudioPtr() != nil {
		t.Error("empty narration reported as audio")
	}
}
