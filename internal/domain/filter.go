package domain

// FeedbackFilter contains filtering/pagination parameters for feedback listings.
// A nil Status matches every status.
type FeedbackFilter struct {
	Status *FeedbackStatus
	Limit  int
	Offset int
}
