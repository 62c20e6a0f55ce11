package dto

// EnsureProfileRequest: first-login payload. Both fields are optional.
type EnsureProfileRequest struct {
	Username string `json:"username" binding:"omitempty,max=64"`
	Timezone string `json:"timezone"`
}
