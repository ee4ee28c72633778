package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/auth"
	"github.com/wildpitch/wildpitch/internal/service"
)

// ReviewHandler handles review creation and deletion.
type ReviewHandler struct {
	reviewService *service.ReviewService
	logger        zerolog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviews,
		logger:        logger.With().Str("handler", "review").Logger(),
	}
}

// Create attaches a review to a campground.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	campgroundID, err := campgroundID(r)
	if err != nil {
		http.Error(w, "Invalid campground ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	rating, _ := strconv.Atoi(r.FormValue("rating"))

	_, err = h.reviewService.Create(r.Context(), service.CreateReviewInput{
		CampgroundID: campgroundID,
		AuthorID:     principal.UserID,
		Rating:       rating,
		Body:         r.FormValue("body"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampgroundNotFound):
			auth.SetFlash(w, auth.FlashError, "Cannot find that campground")
			http.Redirect(w, r, "/campgrounds", http.StatusFound)
		case errors.Is(err, service.ErrRatingOutOfRange):
			auth.SetFlash(w, auth.FlashError, "Rating must be between 1 and 5")
			http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", campgroundID), http.StatusFound)
		case errors.Is(err, service.ErrInvalidReview):
			auth.SetFlash(w, auth.FlashError, "Reviews need a rating and some text")
			http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", campgroundID), http.StatusFound)
		default:
			h.logger.Error().Err(err).Msg("failed to create review")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	auth.SetFlash(w, auth.FlashSuccess, "Created new review")
	http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", campgroundID), http.StatusFound)
}

// Delete removes a review from a campground. Ownership is enforced by
// middleware before this handler runs; the service re-checks it anyway.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	campgroundID, err := campgroundID(r)
	if err != nil {
		http.Error(w, "Invalid campground ID", http.StatusBadRequest)
		return
	}

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid review ID", http.StatusBadRequest)
		return
	}

	if err := h.reviewService.Delete(r.Context(), reviewID, campgroundID, principal.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			auth.SetFlash(w, auth.FlashError, "Cannot find that review")
		case errors.Is(err, service.ErrNotOwner):
			auth.SetFlash(w, auth.FlashError, "You do not have permission to do that")
		default:
			h.logger.Error().Err(err).Msg("failed to delete review")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", campgroundID), http.StatusFound)
		return
	}

	auth.SetFlash(w, auth.FlashSuccess, "Successfully deleted review")
	http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", campgroundID), http.StatusFound)
}
