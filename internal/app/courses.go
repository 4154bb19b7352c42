package app

import (
	"errors"
	"net/http"

	"github.com/bioacademy-lk/platform-api/api"
	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/bioacademy-lk/platform-api/internal/payment"
)

var courseSortWhitelist = map[string]bool{
	"":            true,
	"title":       true,
	"-title":      true,
	"price":       true,
	"-price":      true,
	"created_at":  true,
	"-created_at": true,
}

func (app *Application) GetCourses(w http.ResponseWriter, r *http.Request) {
	filters := domain.CourseFilters{
		Page:     app.readIntQuery(r, "page", 1),
		PageSize: app.readIntQuery(r, "pageSize", 20),
		Term:     r.URL.Query().Get("q"),
		Sort:     r.URL.Query().Get("sort"),
	}

	if filters.Page < 1 || filters.PageSize < 1 || filters.PageSize > 100 {
		app.badRequestResponse(w, r, errors.New("invalid pagination parameters"))
		return
	}

	if !courseSortWhitelist[filters.Sort] {
		app.badRequestResponse(w, r, errors.New("invalid sort parameter"))
		return
	}

	courses, metadata, err := app.courseRepo.GetAll(r.Context(), filters)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCatalogUnavailable):
			app.serviceUnavailableResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.CourseListResponse{
		Courses:  make([]api.CourseSummary, 0, len(courses)),
		Metadata: toApiMetadata(metadata),
	}

	for _, course := range courses {
		resp.Courses = append(resp.Courses, api.CourseSummary{
			Id:       course.ID,
			Title:    course.Title,
			Summary:  course.Summary,
			Price:    payment.FormatAmount(course.Price),
			Currency: course.Currency,
			Duration: course.Duration,
			ImageUrl: course.ImageUrl,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetCourseById(w http.ResponseWriter, r *http.Request) {
	courseId, err := app.readIntParam(r, "courseId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	course, err := app.courseRepo.GetById(r.Context(), courseId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrCatalogUnavailable):
			app.serviceUnavailableResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.CourseDetailResponse{
		Id:          course.ID,
		Title:       course.Title,
		Summary:     course.Summary,
		Description: course.Description,
		Price:       payment.FormatAmount(course.Price),
		Currency:    course.Currency,
		Duration:    course.Duration,
		ImageUrl:    course.ImageUrl,
		CreatedAt:   course.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		PageSize:     metadata.PageSize,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		TotalRecords: metadata.TotalRecords,
	}
}
