package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/shortlink-analytics/internal/analytics"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

// shortenRequest represents the body of a request to shorten a URL.
type shortenRequest struct {
	LongURL     string `json:"longUrl" validate:"required"`
	CustomAlias string `json:"customAlias" validate:"omitempty,max=64"`
	Topic       string `json:"topic" validate:"omitempty,max=64"`
}

// shortenResponse represents a created or already existing short link.
type shortenResponse struct {
	ShortURL  string    `json:"shortUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func shortURL(baseURL, alias string) string {
	return baseURL + "/" + alias
}

func toShortenResponse(baseURL string, link *entity.ShortLink) shortenResponse {
	return shortenResponse{
		ShortURL:  shortURL(baseURL, link.Alias),
		CreatedAt: link.CreatedAt,
	}
}

type dateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type osBreakdown struct {
	OSName       string `json:"osName"`
	UniqueClicks int    `json:"uniqueClicks"`
	UniqueUsers  int    `json:"uniqueUsers"`
}

type deviceBreakdown struct {
	DeviceName   string `json:"deviceName"`
	UniqueClicks int    `json:"uniqueClicks"`
	UniqueUsers  int    `json:"uniqueUsers"`
}

// summaryResponse holds the figures shared by every analytics scope.
type summaryResponse struct {
	TotalClicks  int               `json:"totalClicks"`
	UniqueClicks int               `json:"uniqueClicks"`
	ClicksByDate []dateCount       `json:"clicksByDate"`
	OSType       []osBreakdown     `json:"osType"`
	DeviceType   []deviceBreakdown `json:"deviceType"`
}

func toSummaryResponse(s analytics.Summary) summaryResponse {
	resp := summaryResponse{
		TotalClicks:  s.TotalClicks,
		UniqueClicks: s.UniqueClicks,
		ClicksByDate: make([]dateCount, 0, len(s.ClicksByDate)),
		OSType:       make([]osBreakdown, 0, len(s.OSType)),
		DeviceType:   make([]deviceBreakdown, 0, len(s.DeviceType)),
	}

	for _, d := range s.ClicksByDate {
		resp.ClicksByDate = append(resp.ClicksByDate, dateCount{Date: d.Date, Count: d.Count})
	}
	for _, b := range s.OSType {
		resp.OSType = append(resp.OSType, osBreakdown{
			OSName:       b.Name,
			UniqueClicks: b.UniqueClicks,
			UniqueUsers:  b.UniqueUsers,
		})
	}
	for _, b := range s.DeviceType {
		resp.DeviceType = append(resp.DeviceType, deviceBreakdown{
			DeviceName:   b.Name,
			UniqueClicks: b.UniqueClicks,
			UniqueUsers:  b.UniqueUsers,
		})
	}

	return resp
}

type aliasAnalyticsResponse struct {
	Alias string `json:"alias"`
	summaryResponse
}

func toAliasAnalyticsResponse(r *analytics.AliasReport) aliasAnalyticsResponse {
	return aliasAnalyticsResponse{
		Alias:           r.Alias,
		summaryResponse: toSummaryResponse(r.Summary),
	}
}

type urlAnalytics struct {
	ShortURL     string `json:"shortUrl"`
	TotalClicks  int    `json:"totalClicks"`
	UniqueClicks int    `json:"uniqueClicks"`
}

type topicAnalyticsResponse struct {
	Topic string `json:"topic"`
	summaryResponse
	URLs []urlAnalytics `json:"urls"`
}

func toTopicAnalyticsResponse(baseURL string, r *analytics.TopicReport) topicAnalyticsResponse {
	urls := make([]urlAnalytics, 0, len(r.URLs))
	for _, u := range r.URLs {
		urls = append(urls, urlAnalytics{
			ShortURL:     shortURL(baseURL, u.Alias),
			TotalClicks:  u.TotalClicks,
			UniqueClicks: u.UniqueClicks,
		})
	}

	return topicAnalyticsResponse{
		Topic:           r.Topic,
		summaryResponse: toSummaryResponse(r.Summary),
		URLs:            urls,
	}
}

type overallAnalyticsResponse struct {
	TotalURLs int `json:"totalUrls"`
	summaryResponse
}

func toOverallAnalyticsResponse(r *analytics.AccountReport) overallAnalyticsResponse {
	return overallAnalyticsResponse{
		TotalURLs:       r.TotalURLs,
		summaryResponse: toSummaryResponse(r.Summary),
	}
}

type accountResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type loginResponse struct {
	Message string          `json:"message"`
	User    accountResponse `json:"user"`
}

func toLoginResponse(a *entity.Account) loginResponse {
	return loginResponse{
		Message: "Login successful",
		User: accountResponse{
			ID:    a.ID,
			Email: a.Email,
			Name:  a.DisplayName,
		},
	}
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Error  string            `json:"error"`
	Errors []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse   = errorResponse{Error: "Empty request body"}
	invalidRequestBodyResponse = errorResponse{Error: "Invalid request body"}
	invalidURLResponse         = errorResponse{Error: "Invalid URL"}
	invalidAliasResponse       = errorResponse{Error: "Invalid alias"}
	aliasConflictResponse      = errorResponse{Error: "Custom alias already in use."}
	aliasNotFoundResponse      = errorResponse{Error: "Alias not found"}
	topicNotFoundResponse      = errorResponse{Error: "No URLs found for this topic"}
	accountNotFoundResponse    = errorResponse{Error: "Account not found"}
	unauthorizedResponse       = errorResponse{Error: "Unauthorized"}
	forbiddenResponse          = errorResponse{Error: "Forbidden"}
	loginFailedResponse        = errorResponse{Error: "Login failed"}
	tooManyRequestsResponse    = errorResponse{Error: "Too many requests, please try again later."}
	serverErrorResponse        = errorResponse{Error: "Internal server error"}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "max":
		return "value is too long"
	default:
		return "invalid value"
	}
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	var validationErrs []validationError

	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return errorResponse{
		Error:  "Validation error",
		Errors: validationErrs,
	}
}
