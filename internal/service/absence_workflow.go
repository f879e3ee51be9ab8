package service

import (
	"fmt"

	"github.com/opskit/absence-service/internal/domain"
	apperrors "github.com/opskit/absence-service/pkg/util/errorutil"
)

// tierRequirement is the minimum principal authority for a transition edge.
type tierRequirement int

const (
	tierManagerOrHR tierRequirement = iota
	tierHROnly
)

func (t tierRequirement) satisfiedBy(tier domain.Tier) bool {
	switch t {
	case tierHROnly:
		return tier.IsHROrAdmin
	default:
		return tier.IsHROrAdmin || tier.IsManagerOf
	}
}

// transitionRule defines one edge of the approval state machine, keyed by
// the requested target status.
type transitionRule struct {
	from     domain.AbsenceStatus
	requires tierRequirement
	// effective is the status actually persisted. Level-1 approval advances
	// straight to pending_level2 in the same operation; there is no resting
	// level1_approved row.
	effective   domain.AbsenceStatus
	stampLevel1 bool
	stampLevel2 bool
}

var transitionRules = map[domain.AbsenceStatus]transitionRule{
	domain.StatusLevel1Approved: {
		from:        domain.StatusPendingLevel1,
		requires:    tierManagerOrHR,
		effective:   domain.StatusPendingLevel2,
		stampLevel1: true,
	},
	domain.StatusLevel1Rejected: {
		from:      domain.StatusPendingLevel1,
		requires:  tierManagerOrHR,
		effective: domain.StatusLevel1Rejected,
	},
	domain.StatusLevel2Approved: {
		from:        domain.StatusPendingLevel2,
		requires:    tierHROnly,
		effective:   domain.StatusLevel2Approved,
		stampLevel2: true,
	},
	domain.StatusLevel2Rejected: {
		from:      domain.StatusPendingLevel2,
		requires:  tierHROnly,
		effective: domain.StatusLevel2Rejected,
	},
	domain.StatusApplied: {
		from:      domain.StatusLevel2Approved,
		requires:  tierHROnly,
		effective: domain.StatusApplied,
	},
}

// transitionPlan is the computed outcome of a legal transition.
type transitionPlan struct {
	Effective        domain.AbsenceStatus
	SchedulingImpact bool
	StampLevel1      bool
	StampLevel2      bool
}

// planTransition decides whether requested is reachable from current for a
// principal of the given tier. The source-state check runs before the tier
// check so a stale submission reads as "already decided" rather than
// "not allowed". ownerMayCancel reflects the owner-cancellation policy flag
// combined with the principal being the subject.
func planTransition(current, requested domain.AbsenceStatus, tier domain.Tier, ownerMayCancel bool) (transitionPlan, error) {
	if !requested.IsValid() {
		return transitionPlan{}, apperrors.NewValidationError(
			fmt.Sprintf("unknown status %q", requested), nil)
	}

	if requested == domain.StatusCancelled {
		if current.IsTerminal() {
			return transitionPlan{}, apperrors.NewInvalidTransition(
				fmt.Sprintf("cannot cancel a request in terminal status %q", current),
				map[string]any{"status": current})
		}
		if !tier.IsHROrAdmin && !ownerMayCancel {
			return transitionPlan{}, apperrors.NewForbidden("insufficient authority to cancel")
		}
		return transitionPlan{Effective: domain.StatusCancelled}, nil
	}

	rule, ok := transitionRules[requested]
	if !ok {
		return transitionPlan{}, apperrors.NewInvalidTransition(
			fmt.Sprintf("status %q is not a valid transition target", requested),
			map[string]any{"requested": requested})
	}
	if current != rule.from {
		return transitionPlan{}, apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot move from %q to %q", current, requested),
			map[string]any{"status": current, "requested": requested})
	}
	if !rule.requires.satisfiedBy(tier) {
		return transitionPlan{}, apperrors.NewForbidden("insufficient authority for this transition")
	}

	return transitionPlan{
		Effective:        rule.effective,
		SchedulingImpact: rule.effective.IsAuthoritative(),
		StampLevel1:      rule.stampLevel1,
		StampLevel2:      rule.stampLevel2,
	}, nil
}

// creationPlan is the computed initial state of a new request.
type creationPlan struct {
	Status           domain.AbsenceStatus
	SchedulingImpact bool
	StampLevel1      bool
	StampLevel2      bool
}

// planCreation applies the creation-time shortcut rules.
//
// With the default starting status:
//  1. an HR/admin creating for somebody else carries delegated authority for
//     both tiers, so the request lands fully authoritative;
//  2. a manager creating for a subordinate without a login identity has
//     already exercised the level-1 judgment, so the request lands in
//     pending_level2;
//  3. otherwise the request waits in pending_level1.
//
// An explicit non-default starting status is an HR/admin-only escape hatch
// limited to pending_level2 and level2_approved.
//
// impactOverride honors a caller explicitly switching scheduling impact off
// on an authoritative creation; it can never switch it on.
func planCreation(tier domain.Tier, subjectHasAccount bool, requested domain.AbsenceStatus, impactOverride *bool) (creationPlan, error) {
	if requested == "" {
		requested = domain.StatusPendingLevel1
	}
	if !requested.IsValid() {
		return creationPlan{}, apperrors.NewValidationError(
			fmt.Sprintf("unknown status %q", requested), nil)
	}

	plan := creationPlan{Status: domain.StatusPendingLevel1}

	switch {
	case requested == domain.StatusPendingLevel1:
		if tier.IsHROrAdmin && !tier.IsSelf {
			plan.Status = domain.StatusLevel2Approved
			plan.StampLevel1 = true
			plan.StampLevel2 = true
		} else if !subjectHasAccount && tier.IsManagerOf && !tier.IsHROrAdmin {
			plan.Status = domain.StatusPendingLevel2
			plan.StampLevel1 = true
		}
	case !tier.IsHROrAdmin:
		return creationPlan{}, apperrors.NewForbidden("only HR may create a request in a non-default status")
	case requested == domain.StatusPendingLevel2:
		plan.Status = domain.StatusPendingLevel2
		plan.StampLevel1 = true
	case requested == domain.StatusLevel2Approved:
		plan.Status = domain.StatusLevel2Approved
		plan.StampLevel1 = true
		plan.StampLevel2 = true
	default:
		return creationPlan{}, apperrors.NewValidationError(
			fmt.Sprintf("status %q is not a valid starting status", requested), nil)
	}

	plan.SchedulingImpact = plan.Status.IsAuthoritative()
	if plan.SchedulingImpact && impactOverride != nil && !*impactOverride {
		plan.SchedulingImpact = false
	}
	return plan, nil
}
