package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"autism-diet-planner/internal/app"
	"autism-diet-planner/internal/diet"
	"autism-diet-planner/internal/metrics"
	"autism-diet-planner/internal/planner"
	"autism-diet-planner/internal/session"

	"github.com/labstack/echo/v4"
)

const (
	cookieName   = "diet-planner"
	sessionIDKey = "sid"
)

type downloadLink struct {
	Label    string
	Filename string
	URL      string
}

type resultView struct {
	Generated bool
	Text      string
	Notice    string
	Header    []string
	Rows      []planner.PlanRow
	Downloads []downloadLink
}

type pageData struct {
	Form         formView
	Tips         []string
	Background   template.CSS
	AssetWarning string
	Flash        string
	Errors       map[string]string
	Result       *resultView
}

var downloadLabels = map[app.Artifact]string{
	app.ArtifactText: "Download Diet Plan",
	app.ArtifactCSV:  "Download Sample Plan as CSV",
	app.ArtifactXLSX: "Download Sample Plan as Excel",
}

var downloadFilenames = map[app.Artifact]string{
	app.ArtifactText: app.TextFilename,
	app.ArtifactCSV:  app.CSVFilename,
	app.ArtifactXLSX: app.XLSXFilename,
}

func (s *Server) page(profile diet.Profile) pageData {
	return pageData{
		Form:         newFormView(profile),
		Tips:         tips,
		Background:   s.background,
		AssetWarning: s.assetWarning,
	}
}

// sessionID returns the caller's session ID, issuing a cookie on first use.
// It must run before anything is written to the response.
func (s *Server) sessionID(c echo.Context) (string, error) {
	sess, err := s.cookies.Get(c.Request(), cookieName)
	if err != nil {
		// A cookie signed with an old secret; start over with a new one.
		loggerFrom(c).Debug().Err(err).Msg("discarding unreadable session cookie")
	}
	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := session.NewID()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("failed to save session cookie: %w", err)
	}
	return id, nil
}

func (s *Server) indexHandler(c echo.Context) error {
	data := s.page(diet.DefaultProfile())
	if c.QueryParam("reset") == "1" {
		data.Flash = "Conversation history cleared."
	}
	return c.Render(http.StatusOK, "index.html", data)
}

func (s *Server) planHandler(c echo.Context) error {
	var form planForm
	if err := c.Bind(&form); err != nil {
		data := s.page(diet.DefaultProfile())
		data.Errors = map[string]string{"Form": "could not be read: " + err.Error()}
		return c.Render(http.StatusBadRequest, "index.html", data)
	}
	profile := form.profile()

	sid, err := s.sessionID(c)
	if err != nil {
		return err
	}

	res, err := s.app.Generate(c.Request().Context(), sid, profile)
	var verr *diet.ValidationError
	if errors.As(err, &verr) {
		data := s.page(profile)
		data.Errors = verr.Fields
		return c.Render(http.StatusBadRequest, "index.html", data)
	}
	if err != nil {
		return err
	}

	view, err := s.resultView(res)
	if err != nil {
		return err
	}

	data := s.page(profile)
	data.Result = view
	return c.Render(http.StatusOK, "index.html", data)
}

func (s *Server) resultView(res *app.Result) (*resultView, error) {
	view := &resultView{
		Generated: res.Kind == app.KindGenerated,
		Text:      res.Text,
		Notice:    res.Notice,
	}
	if !view.Generated {
		view.Header = planner.Header()
		view.Rows = res.Plan.Rows()
	}
	for _, kind := range res.Artifacts() {
		token, err := s.tokens.Sign(res.ID, kind)
		if err != nil {
			return nil, err
		}
		view.Downloads = append(view.Downloads, downloadLink{
			Label:    downloadLabels[kind],
			Filename: downloadFilenames[kind],
			URL:      "/download/" + url.PathEscape(token),
		})
	}
	return view, nil
}

func (s *Server) downloadHandler(c echo.Context) error {
	resultID, kind, err := s.tokens.Parse(c.Param("token"))
	if err != nil {
		loggerFrom(c).Debug().Err(err).Msg("rejected download token")
		return echo.NewHTTPError(http.StatusNotFound, "download link is invalid or has expired")
	}

	dl, err := s.app.Download(resultID, kind)
	switch {
	case errors.Is(err, app.ErrResultNotFound), errors.Is(err, app.ErrArtifactUnavailable):
		return echo.NewHTTPError(http.StatusNotFound, "download is no longer available")
	case err != nil:
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", dl.Filename))
	return c.Blob(http.StatusOK, dl.ContentType, dl.Data)
}

func (s *Server) resetHandler(c echo.Context) error {
	sid, err := s.sessionID(c)
	if err != nil {
		return err
	}
	if s.app.ResetSession(sid) {
		loggerFrom(c).Info().Str("session_id", sid).Msg("chat session reset")
	}
	return c.Redirect(http.StatusSeeOther, "/?reset=1")
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, metrics.GetSysHealth(s.dataDir, s.app.ActiveSessions()))
}
