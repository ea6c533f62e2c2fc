package dto

import (
	"encoding/json"

	"github.com/makkenzo/content-cms-api/internal/domain/submission"
)

type CreateSubmissionRequest struct {
	FormName string          `json:"form_name" binding:"required,max=200"`
	FormData json.RawMessage `json:"form_data" binding:"required"`
}

// SubmissionQuery carries the filter and paging accepted on submission listings.
type SubmissionQuery struct {
	FormName string `form:"form_name" binding:"omitempty,max=200"`
	Limit    *int   `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset   *int   `form:"offset" binding:"omitempty,min=0"`
}

type SubmissionListResponse struct {
	Submissions []*submission.Submission `json:"submissions"`
	Total       int                      `json:"total"`
	Limit       int                      `json:"limit"`
	Offset      int                      `json:"offset"`
}
