package server

import (
	"errors"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"unicode"

	"lifelink/internal/utils"
	"lifelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/google/uuid"
)

const minPasswordLength = 12

// registerForm mirrors the register page fields.
type registerForm struct {
	GivenName       string     `form:"given_name"`
	FamilyName      string     `form:"family_name"`
	Email           string     `form:"email"`
	Role            types.Role `form:"role"`
	Password        string     `form:"password"`
	ConfirmPassword string     `form:"confirm_password"`
}

func (f *registerForm) normalize() {
	f.GivenName = strings.TrimSpace(f.GivenName)
	f.FamilyName = strings.TrimSpace(f.FamilyName)
	f.Email = strings.TrimSpace(f.Email)
	f.Role = types.Role(strings.TrimSpace(string(f.Role)))
}

// fieldErrors returns one message per invalid field, keyed by form name.
func (f *registerForm) fieldErrors() map[string]string {
	errs := map[string]string{}

	if f.GivenName == "" {
		errs["given_name"] = "First name is required."
	}
	if f.FamilyName == "" {
		errs["family_name"] = "Last name is required."
	}

	switch {
	case f.Email == "":
		errs["email"] = "Email is required."
	case !validEmail(f.Email):
		errs["email"] = "Enter a valid email address."
	}

	if !f.Role.Valid() {
		errs["role"] = "Choose donor, recipient or coordinator."
	}

	if !strongPassword(f.Password) {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}
	if f.Password != f.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	return errs
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// strongPassword mirrors the Cognito pool policy so most rejections happen
// before the round trip.
func strongPassword(pw string) bool {
	if len(pw) < minPasswordLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Create Account"},
		Role:         types.RoleDonor,
		Roles:        types.Roles,
	}

	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
	}
}

func (s *Service) renderRegister(w http.ResponseWriter, r *http.Request, status int, data *types.RegisterPageData) {
	if err := s.renderTemplateStatus(w, r, status, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form registerForm
	if err := r.ParseForm(); err == nil {
		err = decoder.Decode(&form, r.PostForm)
		if err != nil {
			s.logger.WithError(err).Info("failed to decode register form")
		}
	}
	form.normalize()

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Create Account"},
		GivenName:    form.GivenName,
		FamilyName:   form.FamilyName,
		Email:        form.Email,
		Role:         form.Role,
		Roles:        types.Roles,
	}

	if errs := form.fieldErrors(); len(errs) > 0 {
		s.logger.WithField("fields", errs).Info("register form rejected")
		data.Error = "Please fix the highlighted fields."
		data.FieldErrors = errs
		s.renderRegister(w, r, http.StatusBadRequest, data)
		return
	}

	out, err := s.cognitoClient.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(form.Email),
		Password: aws.String(form.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(form.Email)},
			{Name: aws.String("given_name"), Value: aws.String(form.GivenName)},
			{Name: aws.String("family_name"), Value: aws.String(form.FamilyName)},
		},
	})
	if err != nil {
		data.Error, data.FieldErrors = s.signUpRejection(err)
		s.renderRegister(w, r, http.StatusBadRequest, data)
		return
	}

	// The Cognito sub is the user id everywhere else; it is always a UUID.
	userID := aws.ToString(out.UserSub)
	if _, err := uuid.Parse(userID); err != nil {
		s.logger.WithError(err).WithField("user_sub", userID).Error("cognito returned an unexpected user sub")
		s.internalServerError(w)
		return
	}

	err = s.users.UpsertUser(ctx, &types.User{
		ID:         userID,
		Role:       form.Role,
		Email:      utils.StringPtr(form.Email),
		GivenName:  utils.StringPtr(form.GivenName),
		FamilyName: utils.StringPtr(form.FamilyName),
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to record registered user")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("user_id", userID).WithField("role", form.Role).Info("user registered")

	http.Redirect(w, r, "/register/confirm?"+url.Values{"email": {form.Email}}.Encode(), http.StatusSeeOther)
}

// signUpRejection turns a Cognito SignUp failure into a page message and
// field errors.
func (s *Service) signUpRejection(err error) (string, map[string]string) {
	var (
		invalidPassword *ctypes.InvalidPasswordException
		usernameExists  *ctypes.UsernameExistsException
		invalidParam    *ctypes.InvalidParameterException
	)

	switch {
	case errors.As(err, &invalidPassword):
		return "Please fix the highlighted fields.", map[string]string{
			"password": "Password does not meet the account policy.",
		}
	case errors.As(err, &usernameExists):
		return "Try logging in instead.", map[string]string{
			"email": "An account with this email already exists.",
		}
	case errors.As(err, &invalidParam):
		s.logger.WithError(err).Info("cognito rejected sign up parameters")
		return "Some details are invalid. Please review and try again.", nil
	default:
		s.logger.WithError(err).Error("cognito sign up failed")
		return "Unable to create account right now. Please try again.", nil
	}
}

func (s *Service) handleGetRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
	}

	if err := s.renderTemplate(w, r, "page.register.confirm", data); err != nil {
		s.logger.WithError(err).Error("failed to render register confirm page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	code := strings.TrimSpace(r.FormValue("code"))

	_, err := s.cognitoClient.ConfirmSignUp(r.Context(), &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Info("confirmation rejected")

		data := &types.ConfirmRegisterPageData{
			BasePageData: types.BasePageData{Title: "Confirm Your Account"},
			Email:        email,
		}
		var mismatch *ctypes.CodeMismatchException
		var expired *ctypes.ExpiredCodeException
		switch {
		case errors.As(err, &mismatch):
			data.Error = "That code does not match. Check the email and try again."
		case errors.As(err, &expired):
			data.Error = "That code has expired. Register again to get a new one."
		default:
			data.Error = "Unable to confirm account. Please try again."
		}

		if rerr := s.renderTemplateStatus(w, r, http.StatusBadRequest, "page.register.confirm", data); rerr != nil {
			s.logger.WithError(rerr).Error("failed to render register confirm page")
			s.internalServerError(w)
		}
		return
	}

	http.Redirect(w, r, "/login?"+url.Values{"confirmed": {"true"}, "email": {email}}.Encode(), http.StatusSeeOther)
}
