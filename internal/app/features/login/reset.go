package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/slothstore/internal/app/system/authutil"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/inputval"
	"github.com/dalemusser/slothstore/internal/app/system/mailer"
	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgInvalidOTP   = "OTP is invalid or has expired"
	msgInvalidReset = "Token is invalid or has expired"
)

// ServeForgotPassword handles POST /auth/forgot-password. It stores a hashed
// 6-digit OTP and emails the code. If the email cannot be sent the OTP is
// cleared and the request fails.
func (h *Handler) ServeForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, normalize.Email(req.Email))
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpx.Fail(w, http.StatusNotFound, "There is no user with that email address")
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "forgot password: lookup failed", err)
		return
	}

	otp, err := authutil.NewOTP()
	if err != nil {
		httpx.ServerError(w, r, h.Log, "forgot password: otp generation failed", err)
		return
	}
	otpHash, err := authutil.HashPassword(otp)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "forgot password: otp hash failed", err)
		return
	}
	if err := h.Users.SetResetOTP(ctx, u.ID, otpHash, h.now().Add(h.OTPTTL)); err != nil {
		httpx.ServerError(w, r, h.Log, "forgot password: store otp failed", err)
		return
	}

	email := mailer.BuildPasswordResetEmail(mailer.PasswordResetData{
		SiteName:  h.SiteName,
		Username:  u.Username,
		Code:      otp,
		ExpiresIn: formatExpiryDuration(h.OTPTTL),
	})
	email.To = u.Email
	sendErr := h.Mailer.Send(email)
	h.Metrics.EmailSent("password_reset", sendErr)
	if sendErr != nil {
		if err := h.Users.ClearResetOTP(ctx, u.ID); err != nil {
			h.Log.Error("forgot password: clear otp failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		}
		h.Log.Error("forgot password: send failed", zap.Error(sendErr), zap.String("user_id", u.ID.Hex()))
		httpx.JSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "There was an error sending the email. Try again later!",
		})
		return
	}

	h.AuditLog.PasswordResetRequested(ctx, r, u.ID, u.Email)
	httpx.Success(w, http.StatusOK, map[string]any{"message": "OTP sent to your email"})
}

// ServeVerifyOTP handles POST /auth/verify-otp. A valid, unexpired OTP is
// exchanged for a single reset token; only its SHA-256 is stored.
func (h *Handler) ServeVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, msgInvalidOTP)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	email := normalize.Email(req.Email)
	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.AuditLog.PasswordResetOTPFailed(ctx, r, email, "unknown email")
		httpx.Fail(w, http.StatusBadRequest, msgInvalidOTP)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "verify otp: lookup failed", err)
		return
	}

	now := h.now()
	if u.PasswordResetOTPExpires == nil || !u.PasswordResetOTPExpires.After(now) {
		h.AuditLog.PasswordResetOTPFailed(ctx, r, email, "expired or missing")
		httpx.Fail(w, http.StatusBadRequest, msgInvalidOTP)
		return
	}
	if !authutil.CheckPassword(req.OTP, u.PasswordResetOTPHash) {
		h.AuditLog.PasswordResetOTPFailed(ctx, r, email, "wrong code")
		httpx.Fail(w, http.StatusBadRequest, msgInvalidOTP)
		return
	}

	token, hash, err := authutil.NewResetToken()
	if err != nil {
		httpx.ServerError(w, r, h.Log, "verify otp: token generation failed", err)
		return
	}
	if err := h.Users.ExchangeOTPForToken(ctx, u.ID, hash, now.Add(h.ResetTTL)); err != nil {
		httpx.ServerError(w, r, h.Log, "verify otp: store token failed", err)
		return
	}

	httpx.Success(w, http.StatusOK, map[string]any{"resetToken": token})
}

// ServeResetPassword handles POST /auth/reset-password.
func (h *Handler) ServeResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, msgInvalidReset)
		return
	}
	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		httpx.Fail(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByResetToken(ctx, authutil.HashToken(req.ResetToken), h.now())
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpx.Fail(w, http.StatusBadRequest, msgInvalidReset)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "reset password: lookup failed", err)
		return
	}

	h.setPasswordAndRespond(ctx, w, r, u.ID, req.NewPassword, func() {
		h.AuditLog.PasswordReset(ctx, r, u.ID)
	})
}

// setPasswordAndRespond stores a new password (clearing any reset state)
// and answers with a fresh token.
func (h *Handler) setPasswordAndRespond(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID, password string, audit func()) {
	hash, err := authutil.HashPassword(password)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "set password: hash failed", err)
		return
	}
	if err := h.Users.SetPassword(ctx, id, hash); err != nil {
		httpx.ServerError(w, r, h.Log, "set password: store failed", err, zap.String("user_id", id.Hex()))
		return
	}
	token, err := h.Tokens.Sign(id)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "set password: sign token failed", err)
		return
	}
	audit()
	httpx.Success(w, http.StatusOK, map[string]any{"token": token})
}
