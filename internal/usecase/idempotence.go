package usecase

import "time"

type Idempotence struct {
	repo idempotenceRepository
}

func NewIdempotence(repo idempotenceRepository) *Idempotence {
	return &Idempotence{
		repo: repo,
	}
}

func (u *Idempotence) Execute(id string) (bool, error) {
	return u.repo.MakeRecord(id)
}

type PurgeIdempotence struct {
	repo idempotenceRepository
	ttl  time.Duration
}

func NewPurgeIdempotence(repo idempotenceRepository, ttl time.Duration) *PurgeIdempotence {
	return &PurgeIdempotence{
		repo: repo,
		ttl:  ttl,
	}
}

// Execute forgets records older than the configured ttl and reports how many were dropped.
func (u *PurgeIdempotence) Execute(now time.Time) (int, error) {
	return u.repo.Purge(now.Add(-u.ttl))
}
