package server

import (
	"bytes"
	"net/http"
	"strings"

	"lifelink/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	return s.renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func (s *Service) renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) error {
	if setter, ok := data.(types.NavbarDataSetter); ok {
		nav := types.NavbarData{}
		if user := userFromContext(r.Context()); user != nil {
			nav.IsAuthenticated = true
			nav.UserID = user.ID
			nav.UserName = user.DisplayName()
			nav.Role = user.Role
		}
		setter.SetNavbarData(nav)
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// flash copies ?notice= and ?error= from a redirect into the page.
func flash(r *http.Request, base *types.BasePageData) {
	base.Notice = strings.TrimSpace(r.URL.Query().Get("notice"))
	base.Error = strings.TrimSpace(r.URL.Query().Get("error"))
}
