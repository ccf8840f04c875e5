package classifier

import (
	"sync"

	"rescue-coordination-system/internal/domain"
)

// Межі рівнів ймовірності відносно порогу CO2
const (
	lowBandFactor      = 1.2
	moderateBandFactor = 1.5
)

// Classify зіставляє вимір CO2 з рівнем ймовірності наявності вцілілих.
// Чиста функція: монотонно неспадна за CO2 при фіксованому порозі.
func Classify(co2, threshold float64) domain.SurvivorProbability {
	if threshold <= 0 || co2 <= threshold {
		return domain.ProbabilityNone
	}
	if co2 > threshold*moderateBandFactor {
		return domain.ProbabilityHigh
	}
	if co2 > threshold*lowBandFactor {
		return domain.ProbabilityModerate
	}
	return domain.ProbabilityLow
}

// SeverityFor зіставляє рівень ймовірності з серйозністю тривоги
func SeverityFor(p domain.SurvivorProbability) domain.AlertSeverity {
	switch p {
	case domain.ProbabilityHigh:
		return domain.AlertSeverityCritical
	case domain.ProbabilityModerate:
		return domain.AlertSeverityHigh
	case domain.ProbabilityLow:
		return domain.AlertSeverityMedium
	default:
		return domain.AlertSeverityLow
	}
}

// Threshold — глобальна конфігураційна комірка порогу CO2.
// Оператор може змінити значення в будь-який момент; класифікація завжди
// читає значення, актуальне на момент виклику, без снапшоту на вимір.
type Threshold struct {
	mu    sync.RWMutex
	value float64
}

// NewThreshold створює комірку порогу з початковим значенням
func NewThreshold(value float64) *Threshold {
	return &Threshold{value: value}
}

// Value повертає поточне значення порогу
func (t *Threshold) Value() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set замінює значення порогу; набирає чинності з наступного виміру
func (t *Threshold) Set(value float64) {
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
}

// Classify класифікує вимір за поточним значенням порогу
func (t *Threshold) Classify(co2 float64) domain.SurvivorProbability {
	return Classify(co2, t.Value())
}
