package wizard

import "errors"

var (
	// ErrStepBlocked - не выполнены требования текущего шага, переход вперёд недоступен.
	ErrStepBlocked = errors.New("step requirements are not met")
	// ErrDateConflict - выбранный период содержит занятые дни; даты сброшены.
	ErrDateConflict = errors.New("selected range includes unavailable days")
	// ErrSubmissionInFlight - заявка уже отправляется.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrWizardClosed - мастер закрыт или сброшен, результат операции отброшен.
	ErrWizardClosed = errors.New("wizard is closed")
	// ErrWizardSubmitted - заявка уже отправлена; для новой нужен сброс.
	ErrWizardSubmitted = errors.New("reservation already submitted")
	// ErrInvalidField - недопустимое значение поля.
	ErrInvalidField = errors.New("invalid field value")
)
