package models

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	DeviceInfo string `json:"device_info"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirm struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

type UpdateProfileRequest struct {
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio"`
	StreamCategory string `json:"stream_category"`
	AgencyName     string `json:"agency_name"`
	BrandWebsite   string `json:"brand_website"`
}

type SubmitKYCRequest struct {
	DocType string `json:"doc_type"`
	FileRef string `json:"file_ref"`
}

type ReviewKYCRequest struct {
	DocumentID string `json:"document_id"`
	Approve    bool   `json:"approve"`
	Note       string `json:"note"`
}
