package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"lifelink/internal"
	"lifelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME); err == nil {
		s.logger.Debug("user is already logged in, redirecting to dashboard")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Log In"},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
	}
	flash(r, &data.BasePageData)
	if r.URL.Query().Get("confirmed") == "true" {
		data.Notice = "Your account is confirmed. Please log in."
	}

	err := s.renderTemplate(w, r, "page.login", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Log In"},
		Email:        email,
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(ctx, input)
	if err != nil || resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		var notConfirmed *ctypes.UserNotConfirmedException
		switch {
		case errors.As(err, &notConfirmed):
			data.Error = "Please confirm your account before logging in."
		default:
			data.Error = "Invalid email or password."
		}
		if err != nil {
			s.logger.WithError(err).Info("login failed")
		}

		if rerr := s.renderTemplateStatus(w, r, http.StatusUnauthorized, "page.login", data); rerr != nil {
			s.logger.WithError(rerr).Error("failed to render login page with error")
			s.internalServerError(w)
		}
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.internalServerError(w)
		return
	}

	s.setCookie(w, internal.COOKIE_ACCESS_TOKEN_NAME, encryptedToken, int(resp.AuthenticationResult.ExpiresIn))

	// Return to the page that bounced the visitor to /login, if any
	redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME)
	if err == nil && strings.HasPrefix(redirectCookie.Value, "/") && !strings.HasPrefix(redirectCookie.Value, "//") {
		s.clearRedirectCookie(w)
		http.Redirect(w, r, redirectCookie.Value, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAccessTokenCookie(w)
	s.redirectWithNotice(w, r, "/", "You have been logged out.")
}

func (s *Service) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	s.clearAccessTokenCookie(w)
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Service) clearAccessTokenCookie(w http.ResponseWriter) {
	s.setCookie(w, internal.COOKIE_ACCESS_TOKEN_NAME, "", -1)
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	s.setCookie(w, internal.COOKIE_REDIRECT_NAME, path, int(age.Seconds()))
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	s.setCookie(w, internal.COOKIE_REDIRECT_NAME, "", -1)
}

// setCookie writes an HttpOnly, site-wide cookie. A negative maxAge deletes it.
func (s *Service) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
