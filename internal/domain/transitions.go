package domain

// campaignTransitions описує спрямований граф дозволених переходів статусів
// кампанії. Зворотних ребер немає; resolved та cancelled — термінальні.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusInitiated:  {CampaignStatusAssigned, CampaignStatusCancelled},
	CampaignStatusAssigned:   {CampaignStatusAccepted, CampaignStatusCancelled},
	CampaignStatusAccepted:   {CampaignStatusEnRoute, CampaignStatusCancelled},
	CampaignStatusEnRoute:    {CampaignStatusOnScene, CampaignStatusCancelled},
	CampaignStatusOnScene:    {CampaignStatusInProgress, CampaignStatusCancelled},
	CampaignStatusInProgress: {CampaignStatusResolved, CampaignStatusCancelled},
	CampaignStatusResolved:   {},
	CampaignStatusCancelled:  {},
}

// CanTransition перевіряє, чи дозволений перехід кампанії from -> to.
// Валідатор чистий і тотальний: жодних винятків для окремих шляхів.
func CanTransition(from, to CampaignStatus) bool {
	for _, next := range campaignTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions повертає копію множини дозволених наступників статусу
func AllowedTransitions(from CampaignStatus) []CampaignStatus {
	next := campaignTransitions[from]
	out := make([]CampaignStatus, len(next))
	copy(out, next)
	return out
}

// CampaignStatuses перелічує всі статуси кампанії в порядку робочого процесу
func CampaignStatuses() []CampaignStatus {
	return []CampaignStatus{
		CampaignStatusInitiated,
		CampaignStatusAssigned,
		CampaignStatusAccepted,
		CampaignStatusEnRoute,
		CampaignStatusOnScene,
		CampaignStatusInProgress,
		CampaignStatusResolved,
		CampaignStatusCancelled,
	}
}
