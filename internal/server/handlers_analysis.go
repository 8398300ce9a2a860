package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/ats"
	"github.com/jonathan/resume-builder/internal/matching"
	"github.com/jonathan/resume-builder/internal/optimizer"
	"github.com/jonathan/resume-builder/internal/types"
)

// analysisInput is an AnalysisRequest with the resume and job text resolved.
type analysisInput struct {
	ResumeText string
	LaTeX      string
	JobText    string
	Role       string
}

// resolveAnalysis loads the resume by ID when given and fetches the job
// description by URL when no text was posted.
func (s *Server) resolveAnalysis(r *http.Request, req *types.AnalysisRequest, requireJob bool) (*analysisInput, error) {
	in := &analysisInput{ResumeText: req.ResumeText, JobText: req.JobDescription, Role: req.Role}

	if req.ResumeID != "" {
		userID, err := currentUser(r)
		if err != nil {
			return nil, err
		}
		id, err := parseUUID("resume_id", req.ResumeID)
		if err != nil {
			return nil, err
		}
		resume, err := s.resumes.Get(r.Context(), userID, id)
		if err != nil {
			return nil, err
		}
		in.LaTeX = resume.LaTeX
		if strings.TrimSpace(in.ResumeText) == "" {
			in.ResumeText = s.resumes.PlainText(resume)
		}
	}
	if strings.TrimSpace(in.ResumeText) == "" {
		return nil, &ErrValidation{Field: "resume_text", Message: "resume_text or resume_id is required"}
	}

	if strings.TrimSpace(in.JobText) == "" && req.JobURL != "" {
		jd, err := s.fetcher.JobDescription(r.Context(), req.JobURL)
		if err != nil {
			return nil, err
		}
		in.JobText = jd.Text
	}
	if requireJob && strings.TrimSpace(in.JobText) == "" {
		return nil, &ErrValidation{Field: "job_description", Message: "job_description or job_url is required"}
	}
	return in, nil
}

// handleMatch scores a resume against a job description.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	in, err := s.resolveAnalysis(r, &req, true)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, matching.Match(in.ResumeText, in.JobText, in.Role))
}

// handleATSCheck runs the ATS compatibility rules.
func (s *Server) handleATSCheck(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	in, err := s.resolveAnalysis(r, &req, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, ats.Check(ats.Input{
		Text:           in.ResumeText,
		LaTeX:          in.LaTeX,
		JobDescription: in.JobText,
		Role:           in.Role,
	}))
}

// handleAnalyze combines the match score, the ATS report and, on request,
// an AI insight. An insight failure is logged and leaves the insight out.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	in, err := s.resolveAnalysis(r, &req, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	resp, err := s.analyze(r.Context(), in, req.IncludeAI)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) analyze(ctx context.Context, in *analysisInput, includeAI bool) (*types.AnalysisResponse, error) {
	resp := &types.AnalysisResponse{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp.ATS = ats.Check(ats.Input{
			Text:           in.ResumeText,
			LaTeX:          in.LaTeX,
			JobDescription: in.JobText,
			Role:           in.Role,
		})
		return nil
	})

	if strings.TrimSpace(in.JobText) != "" {
		g.Go(func() error {
			resp.Match = matching.Match(in.ResumeText, in.JobText, in.Role)
			if !includeAI {
				return nil
			}
			insight, err := s.optimizer.Summarize(gctx, in.ResumeText, in.JobText, resp.Match)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("analysis insight failed", zap.Error(err))
				return nil
			}
			resp.Insight = insight
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// handleCompile compiles posted LaTeX and returns the PDF.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req types.CompileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	res, err := s.resumes.CompileLaTeX(r.Context(), req.LaTeX)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	setAttachment(w, "application/pdf", "resume.pdf", true)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Header().Set("X-PDF-Pages", strconv.Itoa(res.Pages))
	w.Header().Set("X-PDF-Placeholder", strconv.FormatBool(res.Placeholder))
	_, _ = w.Write(res.PDF)
}

// handleOptimize rewrites posted section text without touching any resume.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req types.OptimizeTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.optimizer.OptimizeSection(r.Context(), optimizer.Request{
		SectionName:    req.Section,
		Content:        req.Content,
		JobDescription: req.JobDescription,
		Instructions:   req.Instructions,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, &types.OptimizeResponse{Result: result})
}

// handleFetchJobDescription imports a job posting's text from its URL.
func (s *Server) handleFetchJobDescription(w http.ResponseWriter, r *http.Request) {
	var req types.FetchJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	jd, err := s.fetcher.JobDescription(r.Context(), req.URL)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types.FetchJobResponse{
		URL:      jd.URL,
		Title:    jd.Title,
		Text:     jd.Text,
		Rendered: jd.Rendered,
	})
}
