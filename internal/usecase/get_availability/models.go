package get_availability

import "time"

// Request модель запроса проверки доступности
type Request struct {
	PropertyID int64     // ID объекта размещения
	CheckIn    time.Time // Дата заезда
	CheckOut   time.Time // Дата выезда
}

// ConflictingRange занятый поддиапазон внутри запрошенного окна
type ConflictingRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Response модель ответа проверки доступности
type Response struct {
	PropertyID int64
	CheckIn    time.Time
	CheckOut   time.Time
	Available  bool
	Conflicts  []ConflictingRange // Пусто, если диапазон свободен
}
