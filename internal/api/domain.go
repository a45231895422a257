package api

import (
	"github.com/JaimeStill/medbrief/internal/chat"
	"github.com/JaimeStill/medbrief/internal/letters"
	"github.com/JaimeStill/medbrief/internal/pipeline"
	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/internal/summaries"
	"github.com/JaimeStill/medbrief/internal/timeline"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Prompts   prompts.System
	Timeline  timeline.System
	Summaries summaries.System
	Letters   letters.System
	Chat      chat.System
}

// NewDomain creates all domain systems from the API runtime.
// Stored prompt overrides feed every model call.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)
	timelineSystem := timeline.New(db, runtime.Logger, runtime.Pagination)

	summariesSystem := summaries.New(
		db,
		runtime.Storage,
		timelineSystem,
		&pipeline.Runtime{
			Gemini:  runtime.Gemini,
			Speech:  runtime.Speech,
			Prompts: promptsSystem,
			Logger:  runtime.Logger,
		},
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Prompts:   promptsSystem,
		Timeline:  timelineSystem,
		Summaries: summariesSystem,
		Letters:   letters.New(db, summariesSystem, runtime.Gemini, promptsSystem, runtime.Logger),
		Chat:      chat.New(summariesSystem, runtime.Gemini, promptsSystem, runtime.Logger),
	}
}
