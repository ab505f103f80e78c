package types

import (
	"errors"
	"fmt"
	"time"
)

// TimeString представляет время дня в формате "HH:MM" (например, "10:30").
// Используется для слотов и рабочих часов, где дата хранится отдельно.
type TimeString string

const layout = "15:04"

var ErrInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")

// NewTimeString создает TimeString из time.Time (отбрасывает дату и секунды)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(layout))
}

// NewTimeStringFromString парсит и валидирует строку "HH:MM"
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет формат "HH:MM". Принимается только каноническая
// форма с ведущими нулями: сравнения времен лексикографические,
// и "9:00" сортировалось бы после "18:00".
func (t TimeString) Validate() error {
	parsed, err := time.Parse(layout, string(t))
	if err != nil || parsed.Format(layout) != string(t) {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero возвращает true для пустого значения
func (t TimeString) IsZero() bool {
	return t == ""
}

func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с начала дня.
// Для невалидного значения возвращает ошибку.
func (t TimeString) Minutes() (int, error) {
	// "24:00" используется как конец рабочего дня
	if t == "24:00" {
		return 24 * 60, nil
	}
	parsed, err := time.Parse(layout, string(t))
	if err != nil || parsed.Format(layout) != string(t) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AddMinutes возвращает время через minutes минут.
// Выход за пределы суток считается ошибкой: слоты не пересекают полночь.
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	m, err := t.Minutes()
	if err != nil {
		return "", err
	}
	m += minutes
	if m < 0 || m > 24*60 {
		return "", fmt.Errorf("%w: %q + %d minutes is out of day range", ErrInvalidTimeString, string(t), minutes)
	}
	if m == 24*60 {
		return TimeString("24:00"), nil
	}
	return TimeString(fmt.Sprintf("%02d:%02d", m/60, m%60)), nil
}

// IsBefore сравнивает два времени (строгое неравенство)
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter сравнивает два времени (строгое неравенство)
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}
