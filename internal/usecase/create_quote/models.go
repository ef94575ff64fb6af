package create_quote

import "time"

// Request модель запроса расчета квоты
type Request struct {
	PropertyID int64     // ID объекта размещения
	CheckIn    time.Time // Дата заезда
	CheckOut   time.Time // Дата выезда
	Guests     int       // Количество гостей
}

// Response детализированная квота, все суммы в центах
type Response struct {
	PropertyID  int64
	CheckIn     time.Time
	CheckOut    time.Time
	Nights      int
	NightlyRate int64
	Subtotal    int64
	CleaningFee int64
	ServiceFee  int64
	Total       int64
	Currency    string
}
