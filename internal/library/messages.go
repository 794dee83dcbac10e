package library

// Caller-facing messages. Wording intentionally varies between operations.
const (
	msgInvalidBook           = "Invalid book."
	msgInvalidISBN           = "Invalid ISBN."
	msgInvalidTitle          = "Invalid title."
	msgInvalidAuthor         = "Invalid author."
	msgInvalidBorrowedState  = "Book with invalid borrowed state."
	msgBookExists            = "Book already exists."
	msgInvalidUser           = "Invalid user."
	msgInvalidUserID         = "Invalid user ID."
	msgInvalidUserIDLending  = "Invalid user Id."
	msgInvalidUserName       = "Invalid user name."
	msgInvalidUserAddress    = "Invalid user address."
	msgUserExists            = "User already exists."
	msgBookNotFound          = "Book not found!"
	msgUserNotFound          = "User not found!"
	msgBookIsBorrowed        = "Book is already borrowed!"
	msgBookWasBorrowed       = "Book was already borrowed!"
	msgBookAlreadyBorrowed   = "Book already borrowed!"
	msgBookNotBorrowed       = "Book wasn't borrowed!"
	msgReviewsUnavailable    = "Review service unavailable!"
	msgNoReviews             = "No reviews found!"
	msgNoReviewsLenient      = "No Reviews Found!"
	msgNotificationFailed    = "Notification failed!"
	msgNotificationRetryLine = "Notification failed! Retrying attempt %d/%d"
)
