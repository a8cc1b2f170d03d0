package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// AssignmentSubject is one reviewable assignment for a teammate, merged
// from the three discovery sources.
type AssignmentSubject struct {
	AssignmentID                uuid.UUID  `json:"assignment_id"`
	Title                       string     `json:"title"`
	TenureID                    *uuid.UUID `json:"tenure_id,omitempty"`
	AnticipatedEnergyPercentage *int       `json:"anticipated_energy_percentage,omitempty"`
	HasActiveTenure             bool       `json:"has_active_tenure"`
}

// DiscoveryService lists the review subjects a teammate currently has.
// Subjects are looked up, never created, here.
type DiscoveryService interface {
	DiscoverAssignmentSubjects(ctx context.Context, teammateID uuid.UUID) ([]AssignmentSubject, error)
	ListAspirations(ctx context.Context, organizationID uuid.UUID) ([]*domain.Aspiration, error)
}

type discoveryService struct {
	log *logger.Logger

	employmentTenures   repos.EmploymentTenureRepo
	assignmentTenures   repos.AssignmentTenureRepo
	positionAssignments repos.PositionAssignmentRepo
	assignments         repos.AssignmentRepo
	aspirations         repos.AspirationRepo
	assignmentCheckIns  *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]
}

func NewDiscoveryService(
	baseLog *logger.Logger,
	employmentTenures repos.EmploymentTenureRepo,
	assignmentTenures repos.AssignmentTenureRepo,
	positionAssignments repos.PositionAssignmentRepo,
	assignments repos.AssignmentRepo,
	aspirations repos.AspirationRepo,
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn],
) DiscoveryService {
	return &discoveryService{
		log:                 baseLog.With("service", "DiscoveryService"),
		employmentTenures:   employmentTenures,
		assignmentTenures:   assignmentTenures,
		positionAssignments: positionAssignments,
		assignments:         assignments,
		aspirations:         aspirations,
		assignmentCheckIns:  assignmentCheckIns,
	}
}

// DiscoverAssignmentSubjects merges three sources in a fixed order: active
// assignment tenures, assignments required/suggested by the current
// position, and pre-existing open check-ins. The merged list is deduped by
// assignment id (first discovery wins), then ordered for display: the
// active-tenure partition descending by anticipated energy with nil energy
// last, the tenure-less partition appended in discovery order.
func (s *discoveryService) DiscoverAssignmentSubjects(ctx context.Context, teammateID uuid.UUID) ([]AssignmentSubject, error) {
	if teammateID == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	dbc := dbctx.Context{Ctx: ctx}

	var merged []AssignmentSubject
	seen := map[uuid.UUID]bool{}

	tenures, err := s.assignmentTenures.ListActiveByTeammate(dbc, teammateID)
	if err != nil {
		return nil, err
	}
	for _, t := range tenures {
		if t == nil || seen[t.AssignmentID] {
			continue
		}
		seen[t.AssignmentID] = true
		tid := t.ID
		sub := AssignmentSubject{
			AssignmentID:                t.AssignmentID,
			TenureID:                    &tid,
			AnticipatedEnergyPercentage: t.AnticipatedEnergyPercentage,
			HasActiveTenure:             true,
		}
		if t.Assignment != nil {
			sub.Title = t.Assignment.Title
		}
		merged = append(merged, sub)
	}

	employment, err := s.employmentTenures.GetActiveByTeammate(dbc, teammateID)
	if err != nil {
		return nil, err
	}
	if employment != nil {
		links, err := s.positionAssignments.ListByPosition(dbc, employment.PositionID)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			if l == nil || seen[l.AssignmentID] {
				continue
			}
			seen[l.AssignmentID] = true
			sub := AssignmentSubject{AssignmentID: l.AssignmentID}
			if l.Assignment != nil {
				sub.Title = l.Assignment.Title
			}
			merged = append(merged, sub)
		}
	}

	open, err := s.assignmentCheckIns.ListOpenByTeammate(dbc, teammateID)
	if err != nil {
		return nil, err
	}
	var missingTitles []uuid.UUID
	for _, c := range open {
		if c == nil || seen[c.AssignmentID] {
			continue
		}
		seen[c.AssignmentID] = true
		merged = append(merged, AssignmentSubject{AssignmentID: c.AssignmentID})
		missingTitles = append(missingTitles, c.AssignmentID)
	}
	if len(missingTitles) > 0 {
		rows, err := s.assignments.GetByIDs(dbc, missingTitles)
		if err != nil {
			return nil, err
		}
		titles := make(map[uuid.UUID]string, len(rows))
		for _, a := range rows {
			titles[a.ID] = a.Title
		}
		for i := range merged {
			if merged[i].Title == "" {
				merged[i].Title = titles[merged[i].AssignmentID]
			}
		}
	}

	return orderAssignmentSubjects(merged), nil
}

// orderAssignmentSubjects is the display contract: active-tenure subjects
// first, descending by anticipated energy, nil energy last, ties stable;
// tenure-less subjects appended unsorted.
func orderAssignmentSubjects(subs []AssignmentSubject) []AssignmentSubject {
	withTenure := make([]AssignmentSubject, 0, len(subs))
	withoutTenure := make([]AssignmentSubject, 0, len(subs))
	for _, sub := range subs {
		if sub.HasActiveTenure {
			withTenure = append(withTenure, sub)
		} else {
			withoutTenure = append(withoutTenure, sub)
		}
	}
	sort.SliceStable(withTenure, func(i, j int) bool {
		ei := withTenure[i].AnticipatedEnergyPercentage
		ej := withTenure[j].AnticipatedEnergyPercentage
		if ei == nil {
			return false
		}
		if ej == nil {
			return true
		}
		return *ei > *ej
	})
	return append(withTenure, withoutTenure...)
}

func (s *discoveryService) ListAspirations(ctx context.Context, organizationID uuid.UUID) ([]*domain.Aspiration, error) {
	if organizationID == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	return s.aspirations.ListByOrganization(dbctx.Context{Ctx: ctx}, organizationID)
}
