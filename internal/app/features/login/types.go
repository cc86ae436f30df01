package login

type signupRequest struct {
	Username string `json:"username" validate:"required,max=50" label:"Username"`
	Email    string `json:"email" validate:"required,strictemail" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type loginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required" label:"Current password"`
	NewPassword     string `json:"newPassword" validate:"required" label:"New password"`
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,strictemail" label:"Email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,strictemail" label:"Email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric" label:"OTP"`
}

type resetRequest struct {
	ResetToken  string `json:"resetToken" validate:"required,hexadecimal,len=64" label:"Reset token"`
	NewPassword string `json:"newPassword" validate:"required" label:"New password"`
}
