package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/auth"
	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/service"
)

const (
	defaultPageSize = 20

	// maxMultipartMemory bounds how much of a multipart body is held in
	// memory before spilling to temp files.
	maxMultipartMemory = 8 << 20
)

// CampgroundHandler handles the campground pages and the map feed.
type CampgroundHandler struct {
	campgroundService *service.CampgroundService
	reviewService     *service.ReviewService
	userService       *service.UserService
	renderer          *Renderer
	logger            zerolog.Logger
}

// NewCampgroundHandler creates a new CampgroundHandler.
func NewCampgroundHandler(campgrounds *service.CampgroundService, reviews *service.ReviewService, users *service.UserService, renderer *Renderer, logger zerolog.Logger) *CampgroundHandler {
	return &CampgroundHandler{
		campgroundService: campgrounds,
		reviewService:     reviews,
		userService:       users,
		renderer:          renderer,
		logger:            logger.With().Str("handler", "campground").Logger(),
	}
}

// IndexPageData is the campground listing page payload.
type IndexPageData struct {
	PageData
	Campgrounds  []*domain.Campground
	ReviewCounts map[int64]int64
	TotalCount   int64
	Page         int
	PrevPage     int
	NextPage     int
	HasPrev      bool
	HasNext      bool
}

// ShowPageData is the campground detail page payload.
type ShowPageData struct {
	PageData
	Campground *domain.Campground
	AuthorName string
	Reviews    []ReviewView
	IsOwner    bool
}

// ReviewView pairs a review with its author's handle and whether the
// current user may delete it.
type ReviewView struct {
	Review     *domain.Review
	AuthorName string
	CanDelete  bool
}

// EditPageData is the campground edit page payload.
type EditPageData struct {
	PageData
	Campground *domain.Campground
}

// Index renders the campground listing.
func (h *CampgroundHandler) Index(w http.ResponseWriter, r *http.Request) {
	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if pageNum < 1 {
		pageNum = 1
	}

	out, err := h.campgroundService.List(r.Context(), service.ListCampgroundsInput{
		Limit:  defaultPageSize,
		Offset: (pageNum - 1) * defaultPageSize,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.renderer.Render(w, "campgrounds_index.html", IndexPageData{
		PageData:     page(w, r, "Campgrounds"),
		Campgrounds:  out.Campgrounds,
		ReviewCounts: out.ReviewCounts,
		TotalCount:   out.TotalCount,
		Page:         pageNum,
		PrevPage:     pageNum - 1,
		NextPage:     pageNum + 1,
		HasPrev:      pageNum > 1,
		HasNext:      int64(pageNum*defaultPageSize) < out.TotalCount,
	})
}

// MapFeed returns every campground as JSON for the index map.
func (h *CampgroundHandler) MapFeed(w http.ResponseWriter, r *http.Request) {
	out, err := h.campgroundService.List(r.Context(), service.ListCampgroundsInput{})
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal error"}) //nolint:errcheck
		return
	}

	type feature struct {
		ID       int64         `json:"id"`
		Title    string        `json:"title"`
		Location string        `json:"location"`
		Caption  string        `json:"caption"`
		Geometry *domain.Point `json:"geometry,omitempty"`
	}

	features := make([]feature, 0, len(out.Campgrounds))
	for _, cg := range out.Campgrounds {
		features = append(features, feature{
			ID:       cg.ID,
			Title:    cg.Title,
			Location: cg.Location,
			Caption:  cg.Caption(),
			Geometry: cg.Geometry,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"campgrounds": features}) //nolint:errcheck
}

// NewPage renders the campground creation form.
func (h *CampgroundHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "campgrounds_new.html", EditPageData{
		PageData: page(w, r, "New Campground"),
	})
}

// Create creates a campground from a multipart form.
func (h *CampgroundHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	form, err := h.parseCampgroundForm(r)
	if err != nil {
		auth.SetFlash(w, auth.FlashError, "Invalid form data")
		http.Redirect(w, r, "/campgrounds/new", http.StatusFound)
		return
	}
	defer form.close()

	out, err := h.campgroundService.Create(r.Context(), service.CreateCampgroundInput{
		AuthorID:    principal.UserID,
		Title:       form.title,
		Description: form.description,
		Location:    form.location,
		Price:       form.price,
		Images:      form.uploads,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCampground) {
			auth.SetFlash(w, auth.FlashError, "Campgrounds need a title, location, description and a non-negative price")
			http.Redirect(w, r, "/campgrounds/new", http.StatusFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	auth.SetFlash(w, auth.FlashSuccess, "Successfully made a new campground")
	http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", out.Campground.ID), http.StatusFound)
}

// Show renders a campground with its reviews.
func (h *CampgroundHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := campgroundID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	cg, err := h.campgroundService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCampgroundNotFound) {
			auth.SetFlash(w, auth.FlashError, "Cannot find that campground")
			http.Redirect(w, r, "/campgrounds", http.StatusFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	reviews, err := h.reviewService.ListByCampground(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	var callerID int64
	if principal := auth.PrincipalFrom(r.Context()); principal != nil {
		callerID = principal.UserID
	}

	names := h.authorNames(r, cg, reviews)

	views := make([]ReviewView, 0, len(reviews))
	for _, rev := range reviews {
		views = append(views, ReviewView{
			Review:     rev,
			AuthorName: names[rev.AuthorID],
			CanDelete:  callerID != 0 && rev.IsOwnedBy(callerID),
		})
	}

	h.renderer.Render(w, "campgrounds_show.html", ShowPageData{
		PageData:   page(w, r, cg.Title),
		Campground: cg,
		AuthorName: names[cg.AuthorID],
		Reviews:    views,
		IsOwner:    callerID != 0 && cg.IsOwnedBy(callerID),
	})
}

// EditPage renders the campground edit form. Ownership is enforced by
// middleware before this handler runs.
func (h *CampgroundHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := campgroundID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	cg, err := h.campgroundService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCampgroundNotFound) {
			auth.SetFlash(w, auth.FlashError, "Cannot find that campground")
			http.Redirect(w, r, "/campgrounds", http.StatusFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.renderer.Render(w, "campgrounds_edit.html", EditPageData{
		PageData:   page(w, r, "Edit Campground"),
		Campground: cg,
	})
}

// Update modifies a campground from a multipart form.
func (h *CampgroundHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := campgroundID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	form, err := h.parseCampgroundForm(r)
	if err != nil {
		auth.SetFlash(w, auth.FlashError, "Invalid form data")
		http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d/edit", id), http.StatusFound)
		return
	}
	defer form.close()

	_, err = h.campgroundService.Update(r.Context(), service.UpdateCampgroundInput{
		ID:             id,
		CallerID:       principal.UserID,
		Title:          form.title,
		Description:    form.description,
		Location:       form.location,
		Price:          form.price,
		NewImages:      form.uploads,
		DeleteImageIDs: form.deleteImageIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampgroundNotFound):
			auth.SetFlash(w, auth.FlashError, "Cannot find that campground")
			http.Redirect(w, r, "/campgrounds", http.StatusFound)
		case errors.Is(err, service.ErrNotOwner):
			auth.SetFlash(w, auth.FlashError, "You do not have permission to do that")
			http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", id), http.StatusFound)
		case errors.Is(err, service.ErrInvalidCampground):
			auth.SetFlash(w, auth.FlashError, "Campgrounds need a title, location, description and a non-negative price")
			http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d/edit", id), http.StatusFound)
		default:
			h.serverError(w, r, err)
		}
		return
	}

	auth.SetFlash(w, auth.FlashSuccess, "Successfully updated campground")
	http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", id), http.StatusFound)
}

// Delete removes a campground and everything attached to it.
func (h *CampgroundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, err := campgroundID(r)
	if err != nil {
		h.notFound(w, r)
		return
	}

	if err := h.campgroundService.Delete(r.Context(), id, principal.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrCampgroundNotFound):
			auth.SetFlash(w, auth.FlashError, "Cannot find that campground")
			http.Redirect(w, r, "/campgrounds", http.StatusFound)
		case errors.Is(err, service.ErrNotOwner):
			auth.SetFlash(w, auth.FlashError, "You do not have permission to do that")
			http.Redirect(w, r, fmt.Sprintf("/campgrounds/%d", id), http.StatusFound)
		case errors.Is(err, service.ErrDeleteInProgress):
			auth.SetFlash(w, auth.FlashError, "That campground is being deleted")
			http.Redirect(w, r, "/campgrounds", http.StatusFound)
		default:
			h.serverError(w, r, err)
		}
		return
	}

	auth.SetFlash(w, auth.FlashSuccess, "Successfully deleted campground")
	http.Redirect(w, r, "/campgrounds", http.StatusFound)
}

// campgroundForm is a parsed create/edit submission. close releases the
// multipart temp files backing the uploads.
type campgroundForm struct {
	title          string
	description    string
	location       string
	price          float64
	uploads        []service.ImageUpload
	deleteImageIDs []int64
	files          []multipart.File
}

func (f *campgroundForm) close() {
	for _, file := range f.files {
		file.Close() //nolint:errcheck
	}
}

func (h *CampgroundHandler) parseCampgroundForm(r *http.Request) (*campgroundForm, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	form := &campgroundForm{
		title:       r.FormValue("title"),
		description: r.FormValue("description"),
		location:    r.FormValue("location"),
		price:       price,
	}

	for _, raw := range r.Form["delete_images"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		form.deleteImageIDs = append(form.deleteImageIDs, id)
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				form.close()
				return nil, fmt.Errorf("failed to open upload: %w", err)
			}
			form.files = append(form.files, file)
			form.uploads = append(form.uploads, service.ImageUpload{
				Content:     file,
				ContentType: header.Header.Get("Content-Type"),
			})
		}
	}

	return form, nil
}

// authorNames resolves the display handles for a campground's author and
// its reviewers. Lookup failures fall back to "unknown" rather than
// failing the page.
func (h *CampgroundHandler) authorNames(r *http.Request, cg *domain.Campground, reviews []*domain.Review) map[int64]string {
	ids := map[int64]struct{}{}
	if cg.AuthorID != 0 {
		ids[cg.AuthorID] = struct{}{}
	}
	for _, rev := range reviews {
		ids[rev.AuthorID] = struct{}{}
	}

	names := make(map[int64]string, len(ids))
	for id := range ids {
		user, err := h.userService.GetByID(r.Context(), id)
		if err != nil {
			h.logger.Warn().Err(err).Int64("user_id", id).Msg("failed to resolve author")
			names[id] = "unknown"
			continue
		}
		names[id] = user.Handle()
	}
	return names
}

func (h *CampgroundHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	h.renderer.RenderStatus(w, http.StatusInternalServerError, "error.html", ErrorPageData{
		PageData: page(w, r, "Something Went Wrong"),
		Status:   http.StatusInternalServerError,
		Message:  "Something went wrong on our end",
	})
}

func (h *CampgroundHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderStatus(w, http.StatusNotFound, "error.html", ErrorPageData{
		PageData: page(w, r, "Not Found"),
		Status:   http.StatusNotFound,
		Message:  "Page not found",
	})
}

func campgroundID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "campgroundID"), 10, 64)
}
