package usecase

import (
	"fmt"

	"cbrbot/internal/entity"
)

type RecordConversion struct {
	repo historyRepository
}

func NewRecordConversion(repo historyRepository) *RecordConversion {
	return &RecordConversion{
		repo: repo,
	}
}

func (r *RecordConversion) Execute(c entity.Conversion) (entity.Conversion, error) {
	const op = "usecase.RecordConversion"

	saved, err := r.repo.Append(c)
	if err != nil {
		return entity.Conversion{}, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

type ListConversions struct {
	repo  historyRepository
	limit int
}

func NewListConversions(repo historyRepository, limit int) *ListConversions {
	if limit <= 0 {
		limit = 10
	}
	return &ListConversions{
		repo:  repo,
		limit: limit,
	}
}

// Execute returns the newest conversions of the user, newest first.
func (l *ListConversions) Execute(userID int64) ([]entity.Conversion, error) {
	const op = "usecase.ListConversions"

	conversions, err := l.repo.Last(userID, l.limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return conversions, nil
}
