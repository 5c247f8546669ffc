package dto

import "github.com/examdesk/examdesk-api/internal/models"

// SessionListQuery binds the dashboard grid's filter query string.
type SessionListQuery struct {
	Category  string `form:"category"`
	Track     string `form:"track"`
	Location  string `form:"location"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

// SessionListResponse wraps one grid page.
type SessionListResponse struct {
	Sessions   []models.ExamSession `json:"sessions"`
	Pagination *models.Pagination   `json:"pagination"`
}

// CandidatesQuery narrows the qualifying-session picker.
type CandidatesQuery struct {
	Category string `form:"category"`
	Location string `form:"location"`
	DateFrom string `form:"date_from"`
}
