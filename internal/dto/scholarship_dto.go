package dto

import (
	"time"

	"github.com/devanshmehta/scholarmatch/internal/model"
)

type ScholarshipCreateRequest struct {
	Title               string                    `json:"title"`
	Description         string                    `json:"description"`
	Amount              float64                   `json:"amount"`
	Deadline            time.Time                 `json:"deadline"`
	Category            string                    `json:"category"`
	Status              string                    `json:"status"`
	EligibilityCriteria model.EligibilityCriteria `json:"eligibility_criteria"`
	Requirements        []string                  `json:"requirements"`
}

// ScholarshipUpdateRequest uses pointers so partial updates can be told
// apart from explicit zero values. A change to Title or Description
// triggers embedding regeneration.
type ScholarshipUpdateRequest struct {
	Title               *string                    `json:"title"`
	Description         *string                    `json:"description"`
	Amount              *float64                   `json:"amount"`
	Deadline            *time.Time                 `json:"deadline"`
	Category            *string                    `json:"category"`
	Status              *string                    `json:"status"`
	EligibilityCriteria *model.EligibilityCriteria `json:"eligibility_criteria"`
	Requirements        *[]string                  `json:"requirements"`
}
