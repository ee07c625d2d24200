package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/editor/service"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/identity"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/reconcile"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
)

type stubRewriter struct {
	doc resume.Document
}

func (s *stubRewriter) Rewrite(_ context.Context, base resume.Document, _ string, _ resume.Target) (resume.Document, error) {
	out := base.Clone()
	out.Summary = s.doc.Summary
	out.Experience = append(out.Experience, s.doc.Experience...)
	return out, nil
}

func (s *stubRewriter) Structure(_ context.Context, _ string) (resume.Document, error) {
	return s.doc, nil
}

func newEngine(opts Options, rw *stubRewriter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	deps := service.Deps{Reconciler: reconcile.New(identity.NewSequenceGenerator("new"))}
	if rw != nil {
		deps.Rewriter = rw
	}
	RegisterSessionRoutes(g, service.New(deps), opts)
	return g
}

func do(t *testing.T, g *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

type createResp struct {
	ID    string        `json:"id"`
	Token string        `json:"token"`
	State service.State `json:"state"`
}

func TestSessionHandler_Lifecycle(t *testing.T) {
	g := newEngine(Options{}, nil)

	// create blank
	w := do(t, g, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var cr createResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
	require.NotEmpty(t, cr.ID)
	require.Empty(t, cr.Token)
	base := "/api/sessions/" + cr.ID

	// user edit
	w = do(t, g, http.MethodPut, base+"/document", `{"name":"Ada","experience":[{"title":"Analyst"}]}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var st service.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, "Ada", st.Document.Name)
	require.Equal(t, []string{"new-1"}, st.Document.IDs(resume.KindExperience))
	require.True(t, st.CanUndo)

	// invalid edit carries field details
	w = do(t, g, http.MethodPut, base+"/document", `{"experience":[{"title":""}]}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "experience[0].title")

	// undo, redo
	w = do(t, g, http.MethodPost, base+"/undo", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, "", st.Document.Name)
	w = do(t, g, http.MethodPost, base+"/redo", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, g, http.MethodPost, base+"/redo", "", "")
	require.Equal(t, http.StatusOK, w.Code, "redo with nothing to redo is still 200")

	// snapshot
	w = do(t, g, http.MethodGet, base+"/snapshot", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap resume.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Equal(t, "Ada", snap.Name)

	// export without storage
	w = do(t, g, http.MethodPost, base+"/export", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	// delete
	w = do(t, g, http.MethodDelete, base, "", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, g, http.MethodGet, base, "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_ClientDrivenRewrite(t *testing.T) {
	g := newEngine(Options{}, nil)
	w := do(t, g, http.MethodPost, "/api/sessions", `{"document":{"name":"Ada","experience":[{"id":"e1","title":"Analyst"},{"id":"e2","title":"Translator"}]}}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var cr createResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
	base := "/api/sessions/" + cr.ID

	begin := func() service.Ticket {
		w := do(t, g, http.MethodPost, base+"/rewrites", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		var tk service.Ticket
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tk))
		return tk
	}
	first := begin()
	second := begin()
	require.Equal(t, []string{"e1", "e2"}, first.Base.IDs(resume.KindExperience))

	body := `{"document":{"name":"Ada","experience":[{"id":"e2","title":"Translator"},{"title":"Poet"}]}}`

	// the older ticket lost
	w = do(t, g, http.MethodPost, fmt.Sprintf("%s/rewrites/%d", base, first.Number), body, "")
	require.Equal(t, http.StatusOK, w.Code)
	var res service.CommitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Discarded)

	w = do(t, g, http.MethodPost, fmt.Sprintf("%s/rewrites/%d", base, second.Number), body, "")
	require.Equal(t, http.StatusOK, w.Code)
	res = service.CommitResult{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.False(t, res.Discarded)
	require.Equal(t, []string{"e2", "new-1"}, res.State.Document.IDs(resume.KindExperience))
	require.Equal(t, []string{"e1"}, res.Report[resume.KindExperience].DroppedIDs)

	w = do(t, g, http.MethodPost, base+"/rewrites/abc", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, g, http.MethodPost, base+"/rewrites/5", `{}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_ServerRewriteAndImport(t *testing.T) {
	g := newEngine(Options{}, nil)
	w := do(t, g, http.MethodPost, "/api/sessions/import", `{"text":"Ada"}`, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	rw := &stubRewriter{doc: resume.Document{
		Name:       "Ada",
		Summary:    "Poet of science",
		Experience: []resume.Experience{{Title: "Analyst"}},
	}}
	g = newEngine(Options{}, rw)

	w = do(t, g, http.MethodPost, "/api/sessions/import", `{"text":"<p>Ada</p>"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var cr createResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
	require.Equal(t, []string{"new-1"}, cr.State.Document.IDs(resume.KindExperience))

	w = do(t, g, http.MethodPost, "/api/sessions/"+cr.ID+"/rewrite", `{"instruction":"add a role"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var res service.CommitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, []string{"new-1", "new-2"}, res.State.Document.IDs(resume.KindExperience))

	w = do(t, g, http.MethodPost, "/api/sessions/"+cr.ID+"/rewrite", `{}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, g, http.MethodPost, "/api/sessions/"+cr.ID+"/rewrite", `{"instruction":"x","target":{"kind":"nope"}}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_TokenGuard(t *testing.T) {
	g := newEngine(Options{TokenSecret: "handler-test-secret-32-bytes-xxxxx", TokenTTL: time.Hour}, nil)

	w := do(t, g, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var a createResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	require.NotEmpty(t, a.Token)

	w = do(t, g, http.MethodPost, "/api/sessions", "", "")
	var b createResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	require.Equal(t, http.StatusUnauthorized, do(t, g, http.MethodGet, "/api/sessions/"+a.ID, "", "").Code)
	require.Equal(t, http.StatusOK, do(t, g, http.MethodGet, "/api/sessions/"+a.ID, "", a.Token).Code)
	require.Equal(t, http.StatusForbidden, do(t, g, http.MethodGet, "/api/sessions/"+a.ID, "", b.Token).Code)
}

func TestSessionHandler_Limiter(t *testing.T) {
	calls := 0
	limiter := func(c *gin.Context) {
		calls++
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
	}
	g := newEngine(Options{Limiter: limiter}, &stubRewriter{})

	w := do(t, g, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var cr createResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))

	require.Equal(t, http.StatusTooManyRequests, do(t, g, http.MethodPost, "/api/sessions/"+cr.ID+"/rewrite", `{"instruction":"x"}`, "").Code)
	require.Equal(t, http.StatusTooManyRequests, do(t, g, http.MethodPost, "/api/sessions/import", `{"text":"x"}`, "").Code)
	require.Equal(t, http.StatusOK, do(t, g, http.MethodPost, "/api/sessions/"+cr.ID+"/undo", "", "").Code)
	require.Equal(t, 2, calls)
}
