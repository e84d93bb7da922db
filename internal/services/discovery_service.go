package services

import (
	"context"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/models"
	"devmatch-service/internal/repositories"
)

// DiscoveryService picks profiles a user has not swiped on yet.
type DiscoveryService struct {
	users     repositories.UserRepository
	batchSize int
}

func NewDiscoveryService(users repositories.UserRepository, batchSize int) *DiscoveryService {
	if batchSize <= 0 {
		batchSize = 2
	}
	return &DiscoveryService{users: users, batchSize: batchSize}
}

// FindCandidates returns at most one batch of candidates matching filter,
// never including userID or anyone userID already swiped on.
func (s *DiscoveryService) FindCandidates(ctx context.Context, userID string, filter models.CandidateFilter) ([]models.Candidate, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	swipes, err := s.users.GetSwipes(ctx, userID)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	excluded := make(map[string]struct{}, len(swipes)+1)
	excluded[userID] = struct{}{}
	for _, swipe := range swipes {
		excluded[swipe.TargetID] = struct{}{}
	}

	// the query already excludes swiped ids; fetch extra so the re-check
	// below cannot leave the batch short
	found, err := s.users.FindCandidates(ctx, userID, filter, s.batchSize*2)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	candidates := make([]models.Candidate, 0, len(found))
	for _, candidate := range found {
		if _, skip := excluded[candidate.ID]; skip {
			continue
		}
		candidates = append(candidates, candidate)
		if len(candidates) == s.batchSize {
			break
		}
	}
	return candidates, nil
}

func validateFilter(filter models.CandidateFilter) error {
	if filter.MinAge < 0 || filter.MaxAge < 0 {
		return apperrors.Validation("Age filters must be positive")
	}
	if filter.MinAge > 0 && filter.MaxAge > 0 && filter.MinAge > filter.MaxAge {
		return apperrors.Validation("minAge cannot be greater than maxAge")
	}
	if filter.ExperienceLevel != "" && !filter.ExperienceLevel.Valid() {
		return apperrors.Validation("Invalid experience level")
	}
	if filter.LookingFor != "" && !filter.LookingFor.Valid() {
		return apperrors.Validation("Invalid lookingFor value")
	}
	return nil
}
