package letters

import (
	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "medical_letters", "l").
	Project("id", "ID").
	Project("summary_id", "SummaryID").
	Project("letter_type", "LetterType").
	Project("content", "Content").
	Project("is_edited", "IsEdited").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt"}

const returning = "id, summary_id, letter_type, content, is_edited, created_at, updated_at"

func scanLetter(s repository.Scanner) (Letter, error) {
	var l Letter
	err := s.Scan(
		&l.ID,
		&l.SummaryID,
		&l.LetterType,
		&l.Content,
		&l.IsEdited,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}
