package repository

import "errors"

var (
	ErrNotFound   = errors.New("запись не найдена")
	ErrDuplicate  = errors.New("запись уже существует")
	// токен сброса уже использован или заменён новым
	ErrStaleToken = errors.New("токен сброса не совпадает с сохранённым")
)

// DuplicateError уточняет, какое уникальное поле нарушено
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "дублирующееся значение поля " + e.Field
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}
