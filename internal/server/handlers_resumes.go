package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/resumes"
	"github.com/jonathan/resume-builder/internal/types"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ownerAndID resolves the caller and the {id} path parameter of resume
// and conversation routes.
func ownerAndID(r *http.Request) (userID, id uuid.UUID, err error) {
	if userID, err = currentUser(r); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = pathID(r, "id"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, id, nil
}

// handleListTemplates lists the built-in LaTeX templates.
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, rendering.Templates())
}

// handleListResumes lists the caller's resumes.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	list, err := s.resumes.List(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if list == nil {
		list = []types.Resume{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// handleCreateResume creates a resume from posted LaTeX or a template.
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req types.CreateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resume, err := s.resumes.Create(r.Context(), userID, resumes.CreateInput{
		Name:     req.Name,
		Template: req.Template,
		LaTeX:    req.LaTeX,
		Contact:  req.Contact,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, resume)
}

// handleImportResume creates a resume from an uploaded PDF, DOCX, TXT or
// TeX file in the multipart field "file".
func (s *Server) handleImportResume(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.handleError(w, r, &ErrValidation{Field: "file", Message: "expected a multipart upload within the size limit"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.handleError(w, r, &ErrValidation{Field: "file", Message: "required"})
		return
	}
	defer file.Close()

	data, err := extract.ReadAll(file, s.maxUpload)
	if err != nil {
		s.handleError(w, r, &ErrValidation{Field: "file", Message: err.Error()})
		return
	}

	resume, err := s.resumes.Import(r.Context(), userID, resumes.ImportInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Name:        r.FormValue("name"),
		Template:    r.FormValue("template"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, resume)
}

// handleGetResume returns one resume.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resume, err := s.resumes.Get(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resume)
}

// handleUpdateResume replaces a resume wholesale.
func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req types.UpdateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resume, err := s.resumes.Update(r.Context(), userID, id, resumes.UpdateInput{
		Name:     req.Name,
		Template: req.Template,
		LaTeX:    req.LaTeX,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resume)
}

// handleDeleteResume deletes a resume and its stored PDF.
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.resumes.Delete(r.Context(), userID, id); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListSections returns the sections derived from the source.
func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	sections, err := s.resumes.Sections(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, sections)
}

// handleUpdateSection replaces the body of one section.
func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req types.UpdateSectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resume, err := s.resumes.UpdateSection(r.Context(), userID, id, r.PathValue("name"), req.Content)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resume)
}

// handleCompileResume compiles a resume and stores the PDF.
func (s *Server) handleCompileResume(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp, err := s.resumes.Compile(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// handleResumePDF streams the last compiled PDF.
func (s *Server) handleResumePDF(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resume, err := s.resumes.Get(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	rc, err := s.resumes.OpenPDF(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	defer rc.Close()

	setAttachment(w, "application/pdf", downloadName(resume.Name, ".pdf"), true)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("failed to stream PDF", zap.String("resume_id", id.String()), zap.Error(err))
	}
}

// handleResumeDocx exports a resume to DOCX.
func (s *Server) handleResumeDocx(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resume, err := s.resumes.Get(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	data, err := s.resumes.ExportDocx(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	setAttachment(w, docxContentType, downloadName(resume.Name, ".docx"), false)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// handleResumeTex downloads the raw LaTeX source.
func (s *Server) handleResumeTex(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resume, err := s.resumes.Get(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	setAttachment(w, "application/x-tex; charset=utf-8", downloadName(resume.Name, ".tex"), false)
	_, _ = io.WriteString(w, resume.LaTeX)
}

// handleOptimizeResume rewrites one section with AI and records it.
func (s *Server) handleOptimizeResume(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req types.OptimizeSectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resp, err := s.resumes.Optimize(r.Context(), userID, id, resumes.OptimizeInput{
		Section:        req.Section,
		JobDescription: req.JobDescription,
		Instructions:   req.Instructions,
		Apply:          req.Apply,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// handleListOptimizations returns the rewrite audit log.
func (s *Server) handleListOptimizations(w http.ResponseWriter, r *http.Request) {
	userID, id, err := ownerAndID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	recs, err := s.resumes.ListOptimizations(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if recs == nil {
		recs = []types.OptimizationRecord{}
	}
	jsonResponse(w, http.StatusOK, recs)
}

func setAttachment(w http.ResponseWriter, contentType, fileName string, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": fileName}))
}

// downloadName turns a resume name into a safe file name.
func downloadName(name, ext string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	base := strings.Trim(b.String(), "_")
	if base == "" {
		base = "resume"
	}
	return base + ext
}
