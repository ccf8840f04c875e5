package domain

import (
	"errors"
	"fmt"
)

// Помилки доменного рівня. API-шар зіставляє їх із HTTP-кодами через errors.Is.
var (
	// ErrNotFound — операція посилається на неіснуючий запис
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition — запитана зміна статусу не дозволена графом переходів
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState — передумови операції порушені
	ErrInvalidState = errors.New("invalid state")

	// ErrEmptyNodeSet — спроба створити кампанію без жодного вузла
	ErrEmptyNodeSet = errors.New("campaign requires at least one node")

	// ErrDuplicateID — вставка запису з ідентифікатором, що вже існує
	ErrDuplicateID = errors.New("duplicate id")
)

// TransitionError створює помилку переходу з назвами обох статусів
func TransitionError(from, to CampaignStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// AlertTransitionError створює помилку переходу статусу тривоги
func AlertTransitionError(from, to AlertStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
