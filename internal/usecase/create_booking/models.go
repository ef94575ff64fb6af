package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	PropertyID int64     // ID объекта размещения
	GuestID    int64     // ID гостя
	GuestName  string    // Имя гостя
	GuestEmail string    // Email гостя (для платежной сессии)
	CheckIn    time.Time // Дата заезда
	CheckOut   time.Time // Дата выезда
	Guests     int       // Количество гостей
}

// ConflictingRange занятый поддиапазон, из-за которого создание отклонено
type ConflictingRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64
	PropertyID int64
	GuestID    int64
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	Status     string
	Payment    string

	// Зафиксированная квота (центы)
	Nights      int
	NightlyRate int64
	CleaningFee int64
	ServiceFee  int64
	TotalAmount int64
	Currency    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
