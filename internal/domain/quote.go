package domain

// Quote is a deterministic, non-persisted price breakdown for a candidate
// booking. All amounts are integer cents.
type Quote struct {
	Nights      int
	NightlyRate int64
	Subtotal    int64
	CleaningFee int64
	ServiceFee  int64
	Total       int64
	Currency    string
}
