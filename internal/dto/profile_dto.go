package dto

import "encoding/json"

type ProfileUpdateRequest struct {
	ProfileData json.RawMessage `json:"profile_data"`
}

type UserUpsertRequest struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type EmbeddingRequest struct {
	Text string `json:"text"`
}
