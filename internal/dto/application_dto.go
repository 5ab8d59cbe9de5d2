package dto

type ApplicationCreateRequest struct {
	ScholarshipID string `json:"scholarship_id"`
}

type ApplicationUpdateRequest struct {
	Status *string `json:"status"`
}
