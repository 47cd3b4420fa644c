package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Kamar-Folarin/release-dashboard/internal/dashboard"
	apperrors "github.com/Kamar-Folarin/release-dashboard/internal/errors"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
	"github.com/Kamar-Folarin/release-dashboard/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sortfield", func(fl validator.FieldLevel) bool {
		return dashboard.ValidSortField(fl.Field().String())
	})
	_ = v.RegisterValidation("repository", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		owner, name, err := utils.ParseRepository(value)
		return err == nil && owner+"/"+name == value
	})
	return v
}

// DashboardQuery is the query string of GET /dashboard. Filters and sort are
// JSON encoded objects.
type DashboardQuery struct {
	Timeframe string `form:"timeframe" binding:"omitempty,oneof=daily weekly monthly"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Filters   string `form:"filters"`
	Sort      string `form:"sort"`
}

// ExportRequest is the body of POST /export/dashboard-csv
type ExportRequest struct {
	Timeframe     string                  `json:"timeframe" example:"weekly"`
	StartDate     string                  `json:"startDate,omitempty" example:"2024-01-01"`
	EndDate       string                  `json:"endDate,omitempty" example:"2024-03-31"`
	Filters       models.DashboardFilters `json:"filters"`
	Sort          *models.SortSpec        `json:"sort,omitempty"`
	ExportOptions *models.ExportOptions   `json:"exportOptions"`
}

// ReleaseStatsQuery is the query string of GET /github/releases/stats
type ReleaseStatsQuery struct {
	Repository string `form:"repository" binding:"required"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
}

func decodeJSONParam(name, raw string, target interface{}) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be a JSON object", name), err)
	}
	return nil
}

// parseDateRange parses optional bounds. A date-only end bound covers the
// whole day.
func parseDateRange(startDate, endDate string) (start, end *time.Time, err error) {
	if startDate != "" {
		t, err := utils.ParseDate(startDate)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if endDate != "" {
		t, err := utils.ParseDate(endDate)
		if err != nil {
			return nil, nil, err
		}
		if utils.IsDateOnly(endDate) {
			t = utils.EndOfDay(t)
		}
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, apperrors.NewValidationError("startDate must not be after endDate", nil)
	}
	return start, end, nil
}

// filterParams validates and normalizes the dashboard parameters shared by
// the dashboard and export endpoints
func (h *Handler) filterParams(timeframe, startDate, endDate string, filters models.DashboardFilters, sort *models.SortSpec) (models.DashboardFilterParams, error) {
	tf := models.Timeframe(timeframe)
	if tf == "" {
		tf = models.TimeframeDaily
	}
	if !tf.Valid() {
		return models.DashboardFilterParams{}, apperrors.NewValidationError(
			fmt.Sprintf("timeframe must be one of daily, weekly, monthly; got %q", timeframe), nil)
	}

	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return models.DashboardFilterParams{}, err
	}

	repos := make([]string, 0, len(filters.Repository))
	for _, r := range filters.Repository {
		owner, name, err := utils.ParseRepository(utils.QualifyRepository(r, h.defaultOwner))
		if err != nil {
			return models.DashboardFilterParams{}, err
		}
		repos = append(repos, owner+"/"+name)
	}
	if len(repos) == 0 {
		repos = h.releases.Repositories()
	}
	filters.Repository = repos

	if err := validate.Struct(filters); err != nil {
		return models.DashboardFilterParams{}, apperrors.NewValidationError("invalid filters", err)
	}
	if sort != nil {
		if err := validate.Struct(sort); err != nil {
			return models.DashboardFilterParams{}, apperrors.NewValidationError("invalid sort", err)
		}
	}

	return models.DashboardFilterParams{
		Timeframe: tf,
		StartDate: start,
		EndDate:   end,
		Filters:   filters,
		Sort:      sort,
	}, nil
}
