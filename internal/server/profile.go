package server

import (
	"errors"
	"net/http"
	"strings"

	"lifelink/internal/profiles"
	"lifelink/pkg/types"
)

type profileResponse struct {
	Profile *types.DonorProfile `json:"profile"`
}

type documentResponse struct {
	Document *types.ProfileDocument `json:"document"`
}

func (s *Service) handleAPIGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	profile, err := s.profiles.Profile(ctx, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, profileResponse{Profile: profile})
}

func (s *Service) handleAPISaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	var input profiles.SaveProfileInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.profiles.Save(ctx, actor, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, profileResponse{Profile: profile})
}

func (s *Service) handleAPIVerifyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	profile, err := s.profiles.Verify(ctx, actor, r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, profileResponse{Profile: profile})
}

func (s *Service) handleAPIUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	upload, cleanup, err := readDocumentUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer cleanup()

	doc, err := s.profiles.AttachDocument(ctx, actor, upload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, documentResponse{Document: doc})
}

// readDocumentUpload pulls the "file" part and "documentType" field out of a
// multipart request. The content type is sniffed rather than trusted.
func readDocumentUpload(w http.ResponseWriter, r *http.Request) (profiles.DocumentUpload, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, types.MaxDocumentBytes+(1<<20))
	if err := r.ParseMultipartForm(types.MaxDocumentBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return profiles.DocumentUpload{}, noop, types.ValidationError("Please fix the highlighted fields.", map[string]string{
				"file": "File is too large (max 10MB).",
			})
		}
		return profiles.DocumentUpload{}, noop, types.ValidationError("Upload must be multipart/form-data.", nil)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return profiles.DocumentUpload{}, noop, types.ValidationError("Please fix the highlighted fields.", map[string]string{
			"file": "Please choose a file to upload.",
		})
	}

	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return profiles.DocumentUpload{}, noop, err
	}
	mimeType, _, _ := strings.Cut(http.DetectContentType(sniff[:n]), ";")

	return profiles.DocumentUpload{
		DocumentType: strings.TrimSpace(r.FormValue("documentType")),
		FileName:     header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		Body:         file,
	}, func() { file.Close() }, nil
}
