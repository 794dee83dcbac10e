package http

import (
	"net/http"
)

// Register mounts the library routes on mux.
func (h *LibraryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /books", h.AddBook)
	mux.HandleFunc("GET /books/{isbn}", h.GetBook)
	mux.HandleFunc("POST /books/{isbn}/borrow", h.BorrowBook)
	mux.HandleFunc("POST /books/{isbn}/return", h.ReturnBook)
	mux.HandleFunc("POST /books/{isbn}/notify", h.NotifyUser)
	mux.HandleFunc("GET /books/{isbn}/loans", h.ListLoans)
	mux.HandleFunc("POST /users", h.RegisterUser)
}
