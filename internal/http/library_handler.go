package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"library/internal/entity"
	"library/internal/httpx"
	"library/internal/library"
)

// LibraryService is the subset of library.Service exposed over HTTP.
type LibraryService interface {
	AddBook(ctx context.Context, book *entity.Book) error
	GetBookByISBN(ctx context.Context, isbn, userID string) (entity.Book, error)
	BorrowBook(ctx context.Context, isbn, userID string) error
	ReturnBook(ctx context.Context, isbn string) error
	NotifyUserWithBookReviews(ctx context.Context, isbn, userID string) error
	RegisterUser(ctx context.Context, user *entity.User) error
}

// LoanHistory lists the loans recorded for a book.
type LoanHistory interface {
	Loans(ctx context.Context, isbn string) ([]entity.Loan, error)
}

// ChannelResolver turns a user's notification address into a channel.
type ChannelResolver func(address string) (entity.NotificationService, error)

type LibraryHandler struct {
	svc     LibraryService
	loans   LoanHistory
	resolve ChannelResolver
	logger  *log.Logger
}

func NewLibraryHandler(svc LibraryService, loans LoanHistory, resolve ChannelResolver, logger *log.Logger) *LibraryHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &LibraryHandler{svc: svc, loans: loans, resolve: resolve, logger: logger}
}

type addBookRequest struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Borrowed bool   `json:"borrowed"`
}

type userRequest struct {
	UserID string `json:"user_id"`
}

type registerUserRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type borrowResponse struct {
	ISBN   string `json:"isbn"`
	UserID string `json:"user_id"`
}

// @Summary Add book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} entity.Book
// @Failure 400,409 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *LibraryHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if !h.decode(w, r, &req) {
		return
	}

	book := entity.Book{ISBN: req.ISBN, Title: req.Title, Author: req.Author, Borrowed: req.Borrowed}
	if err := h.svc.AddBook(r.Context(), &book); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, book)
}

// @Summary Get book by ISBN
// @Description Returns an available book and sends the user its reviews.
// @Tags books
// @Produce json
// @Param isbn path string true "Book ISBN"
// @Param user_id query string true "Requesting user"
// @Success 200 {object} entity.Book
// @Failure 400,404,409 {object} httpx.ErrorResponse
// @Router /books/{isbn} [get]
func (h *LibraryHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.GetBookByISBN(r.Context(), r.PathValue("isbn"), r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, book)
}

// @Summary Borrow book
// @Tags loans
// @Accept json
// @Param isbn path string true "Book ISBN"
// @Success 200 {object} borrowResponse
// @Failure 400,404,409 {object} httpx.ErrorResponse
// @Router /books/{isbn}/borrow [post]
func (h *LibraryHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}

	isbn := r.PathValue("isbn")
	if err := h.svc.BorrowBook(r.Context(), isbn, req.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, borrowResponse{ISBN: isbn, UserID: req.UserID})
}

// @Summary Return book
// @Tags loans
// @Param isbn path string true "Book ISBN"
// @Success 204
// @Failure 400,404,409 {object} httpx.ErrorResponse
// @Router /books/{isbn}/return [post]
func (h *LibraryHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ReturnBook(r.Context(), r.PathValue("isbn")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// @Summary List loans of a book
// @Tags loans
// @Param isbn path string true "Book ISBN"
// @Success 200 {array} entity.Loan
// @Router /books/{isbn}/loans [get]
func (h *LibraryHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.Loans(r.Context(), r.PathValue("isbn"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if loans == nil {
		loans = []entity.Loan{}
	}
	httpx.JSONSuccess(w, r, loans)
}

// @Summary Notify user with book reviews
// @Tags notifications
// @Accept json
// @Param isbn path string true "Book ISBN"
// @Success 204
// @Failure 400,404,409,502,503 {object} httpx.ErrorResponse
// @Router /books/{isbn}/notify [post]
func (h *LibraryHandler) NotifyUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.NotifyUserWithBookReviews(r.Context(), r.PathValue("isbn"), req.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// @Summary Register user
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} entity.User
// @Failure 400,409 {object} httpx.ErrorResponse
// @Router /users [post]
func (h *LibraryHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user := entity.User{ID: req.ID, Name: req.Name, Address: req.Address}
	// An unusable address leaves Notifier nil, which the service rejects.
	if ch, err := h.resolve(req.Address); err == nil {
		user.Notifier = ch
	}

	if err := h.svc.RegisterUser(r.Context(), &user); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, user)
}

func (h *LibraryHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, httpx.CodeTooLarge, "Request body too large")
			return false
		}
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeInvalidArgument, "Invalid request body")
		return false
	}
	return true
}

func (h *LibraryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Printf("request failed: request_id=%s path=%s error=%v", httpx.RequestIDFrom(r), r.URL.Path, err)
		httpx.JSONError(w, r, status, code, "server error")
		return
	}
	httpx.JSONError(w, r, status, code, err.Error())
}

func statusFor(err error) (int, string) {
	switch kind := library.KindOf(err); {
	case errors.Is(kind, library.ErrInvalidArgument):
		return http.StatusBadRequest, httpx.CodeInvalidArgument
	case errors.Is(kind, library.ErrBookNotFound),
		errors.Is(kind, library.ErrUserNotRegistered),
		errors.Is(kind, library.ErrNoReviewsFound):
		return http.StatusNotFound, httpx.CodeNotFound
	case errors.Is(kind, library.ErrBookAlreadyBorrowed),
		errors.Is(kind, library.ErrBookNotBorrowed),
		errors.Is(kind, library.ErrAlreadyExists):
		return http.StatusConflict, httpx.CodeConflict
	case errors.Is(kind, library.ErrReviewServiceUnavailable):
		return http.StatusServiceUnavailable, httpx.CodeServiceUnavailable
	case errors.Is(kind, library.ErrNotificationFailed):
		return http.StatusBadGateway, httpx.CodeUpstreamFailed
	default:
		return http.StatusInternalServerError, httpx.CodeInternal
	}
}
