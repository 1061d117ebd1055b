package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/internhub/portal/internal/api/metrics"
	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
	"github.com/internhub/portal/internal/core/validation"
)

// FormHandler validates the portal forms and, once they pass, submits them
// to the backend. A form with any field error never reaches the backend.
type FormHandler struct {
	validator *validation.Validator
	backend   ports.Backend
	log       zerolog.Logger
}

func NewFormHandler(v *validation.Validator, backend ports.Backend, log zerolog.Logger) *FormHandler {
	return &FormHandler{validator: v, backend: backend, log: log}
}

// check validates form against schema and writes the 422 answer when it fails.
// ok is false when the response has been written.
func (h *FormHandler) check(c echo.Context, schema validation.Schema, form validation.Form, extra validation.Errors) (ok bool, err error) {
	errs := h.validator.Validate(schema, form)
	for field, msg := range extra {
		errs[field] = msg
	}
	if errs.Valid() {
		return true, nil
	}

	metrics.FormValidationFailuresTotal.WithLabelValues(schema.Name, firstField(schema, errs)).Inc()
	return false, c.JSON(http.StatusUnprocessableEntity, validationResponse{Errors: errs})
}

func firstField(schema validation.Schema, errs validation.Errors) string {
	for _, f := range schema.Fields {
		if _, ok := errs[f]; ok {
			return f
		}
	}
	for f := range errs {
		return f
	}
	return ""
}

// Validate runs a named form's validators without submitting anything.
//
// @Summary      Validate a form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        form  path      string             true  "registration, profile or password"
// @Param        body  body      map[string]string  true  "Field values keyed by field name"
// @Success      200   {object}  validationResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  validationResponse
// @Router       /api/forms/{form}/validate [post]
func (h *FormHandler) Validate(c echo.Context) error {
	schema, ok := validation.Lookup(c.Param("form"))
	if !ok {
		return domain.ErrUnknownForm
	}

	form := validation.Form{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &form); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	if ok, err := h.check(c, schema, form, nil); !ok {
		return err
	}
	return c.JSON(http.StatusOK, validationResponse{Errors: validation.Errors{}})
}

// RegisterIntern validates the registration form and creates the account.
//
// @Summary      Register an intern
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        body  body      registrationRequest  true  "Registration form"
// @Success      201   {object}  domain.User
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  validationResponse
// @Router       /api/interns [post]
func (h *FormHandler) RegisterIntern(c echo.Context) error {
	var req registrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if ok, err := h.check(c, validation.Registration, req.form(), nil); !ok {
		return err
	}

	created, err := h.backend.RegisterIntern(c.Request().Context(), req.user())
	if err != nil {
		return err
	}
	h.log.Info().Str("user_id", created.ID).Msg("intern registered")
	return c.JSON(http.StatusCreated, created)
}

// UpdateProfile validates the profile form, including an optional picture,
// and forwards it to the backend as multipart form data.
//
// @Summary      Update own profile
// @Tags         forms
// @Accept       multipart/form-data
// @Produce      json
// @Param        first_name       formData  string  true   "First name"
// @Param        last_name        formData  string  true   "Last name"
// @Param        email            formData  string  true   "Email"
// @Param        phone            formData  string  true   "Phone"
// @Param        nic              formData  string  true   "NIC"
// @Param        dob              formData  string  true   "Date of birth (YYYY-MM-DD)"
// @Param        profile_picture  formData  file    false  "JPEG, PNG or WebP up to 2 MB"
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      422  {object}  validationResponse
// @Router       /api/profile [put]
func (h *FormHandler) UpdateProfile(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	form := validation.Form{}
	for _, f := range validation.Profile.Fields {
		form[f] = c.FormValue(f)
	}

	picture, err := readPicture(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid picture upload"})
	}
	extra := validation.Errors{}
	if picture != nil {
		if msg := h.validator.ProfilePicture(picture.Content); msg != "" {
			extra[validation.FieldProfilePicture] = msg
		}
	}
	if ok, err := h.check(c, validation.Profile, form, extra); !ok {
		return err
	}

	user := domain.User{
		FirstName:   form[validation.FieldFirstName],
		LastName:    form[validation.FieldLastName],
		Email:       form[validation.FieldEmail],
		Phone:       form[validation.FieldPhone],
		NIC:         form[validation.FieldNIC],
		DateOfBirth: form[validation.FieldDateOfBirth],
	}
	updated, err := h.backend.UpdateProfile(c.Request().Context(), sess.ID, user, picture)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// readPicture returns the uploaded profile picture, nil when none was sent.
// At most one byte past the size limit is read so oversize files are still
// reported by the validator.
func readPicture(c echo.Context) (*domain.Upload, error) {
	fh, err := c.FormFile(validation.FieldProfilePicture)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, validation.MaxPictureBytes+1))
	if err != nil {
		return nil, err
	}
	return &domain.Upload{Field: validation.FieldProfilePicture, Filename: fh.Filename, Content: content}, nil
}

// ChangePassword validates the password form and submits the change.
//
// @Summary      Change own password
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        body  body  passwordRequest  true  "Password change form"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      422  {object}  validationResponse  "also returned for a wrong current password"
// @Router       /api/password [put]
func (h *FormHandler) ChangePassword(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if ok, err := h.check(c, validation.PasswordChange, req.form(), nil); !ok {
		return err
	}

	change := domain.PasswordChange{CurrentPassword: req.CurrentPassword, NewPassword: req.NewPassword}
	if err := h.backend.ChangePassword(c.Request().Context(), sess.ID, change); err != nil {
		if errors.Is(err, domain.ErrIncorrectPassword) {
			metrics.FormValidationFailuresTotal.WithLabelValues(validation.PasswordChange.Name, validation.FieldCurrentPassword).Inc()
			return c.JSON(http.StatusUnprocessableEntity, validationResponse{Errors: validation.Errors{
				validation.FieldCurrentPassword: "Current password is incorrect",
			}})
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
