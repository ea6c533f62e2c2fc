package dto

type UploadResponse struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
