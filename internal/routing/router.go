// Package routing selects which agent persona answers the next patient turn.
//
// The selection is a strict priority chain over the accumulated medical
// record: the chain is held as an ordered table of (predicate, role) pairs and
// evaluated first-match-wins, so the total order is auditable in one place
// instead of being scattered across control flow.
package routing

import "medintake/internal/models"

type route struct {
	role models.AgentRole
	done func(models.MedicalRecord) bool
}

// chain lists the intake stages in priority order. A stage's predicate
// reports whether that stage is already satisfied; the router returns the
// first stage that is not. The triage decision itself (emergency vs. not)
// never alters this order — all three outcomes resume the same chain once the
// vitals stage is completed.
var chain = []route{
	{models.RoleVitalsTriage, func(r models.MedicalRecord) bool { return r.Vitals.StageCompleted }},
	{models.RoleTriage, models.MedicalRecord.HasChiefComplaint},
	{models.RoleClinicalInvestigator, models.MedicalRecord.HPISufficient},
	{models.RoleRecordsClerk, func(r models.MedicalRecord) bool { return r.RecordsCheckCompleted }},
	{models.RoleHistorySpecialist, models.MedicalRecord.HistoryPresent},
}

// DetermineAgent returns the single persona authorized to respond next. It is
// a total, pure function: any reachable record state (including a completely
// empty record) maps to exactly one role, identical inputs map to identical
// outputs, and further-completed records never route to an earlier stage.
func DetermineAgent(record models.MedicalRecord) models.AgentRole {
	for _, r := range chain {
		if !r.done(record) {
			return r.role
		}
	}
	// Every stage satisfied: the record is complete and stays with handover
	// on every subsequent call.
	return models.RoleHandoverSpecialist
}
