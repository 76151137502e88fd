package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/certifica/internal/auth"
	"github.com/abhisek/certifica/internal/credits"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/examgen"
	"github.com/abhisek/certifica/internal/payment"
	"github.com/abhisek/certifica/internal/questionbank"
	"github.com/abhisek/certifica/internal/store"
	"github.com/abhisek/certifica/internal/store/storetest"
)

const webhookSecret = "whsec-test"

type testEnv struct {
	t     *testing.T
	store *store.Store
	auth  *auth.Service
	exams *exam.Manager
	srv   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := storetest.Open(t)

	authSvc := auth.NewService(s.Users(), auth.Config{
		Secret:      []byte("api-test-secret"),
		TTL:         time.Hour,
		AdminEmails: []string{"admin@example.com"},
		BcryptCost:  bcrypt.MinCost,
	}, nil, logger)

	exams := exam.NewManager(exam.ManagerConfig{
		Courses:      credits.Courses{Repo: s.Courses()},
		Source:       examgen.NewFallbackSource(nil, questionbank.New(), logger),
		Consumer:     credits.NewConsumer(s.Certificates(), nil, logger),
		Recorder:     credits.Attempts{Repo: s.Attempts()},
		Logger:       logger,
		TickInterval: time.Hour,
	})
	t.Cleanup(exams.Close)

	srv := httptest.NewServer(NewRouter(Deps{
		Store:         s,
		Auth:          authSvc,
		Exams:         exams,
		Payments:      payment.NewService(s.Purchases(), nil, logger),
		WebhookSecret: webhookSecret,
		Logger:        logger,
	}))
	t.Cleanup(srv.Close)

	return &testEnv{t: t, store: s, auth: authSvc, exams: exams, srv: srv}
}

// do sends a JSON request and decodes a JSON response into out when out
// is not nil.
func (e *testEnv) do(method, path, token string, body any, out any) int {
	e.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// register signs up through the API and returns the token.
func (e *testEnv) register(email, plan string) (string, store.User) {
	e.t.Helper()
	var resp loginResp
	status := e.do(http.MethodPost, "/api/auth/register", "", auth.RegisterInput{
		Name:          "Maria Silva",
		Email:         email,
		CPF:           "123.456.789-00",
		Password:      "secret1",
		Plan:          plan,
		AcceptedTerms: true,
	}, &resp)
	require.Equal(e.t, http.StatusCreated, status)
	require.NotEmpty(e.t, resp.Token)
	return resp.Token, resp.User
}

// tokenFor issues a token for a user created directly in the store.
func (e *testEnv) tokenFor(u store.User) string {
	e.t.Helper()
	token, err := e.auth.Issue(u)
	require.NoError(e.t, err)
	return token
}

// answerAll answers every question, correctly when pass is set.
func (e *testEnv) answerAll(token string, userID int, attemptID string, pass bool) {
	e.t.Helper()
	s, err := e.exams.Session(attemptID, userID)
	require.NoError(e.t, err)
	for _, q := range s.Questions() {
		opt := q.Correct
		if !pass {
			opt = (q.Correct + 1) % questionbank.OptionCount
		}
		status := e.do(http.MethodPut, fmt.Sprintf("/api/attempts/%s/answers/%d", attemptID, q.ID),
			token, map[string]int{"option": opt}, nil)
		require.Equal(e.t, http.StatusOK, status)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	env := newTestEnv(t)
	token, u := env.register("Maria@Example.com", "pro")
	assert.Equal(t, "maria@example.com", u.Email)
	assert.Equal(t, 3, u.Credits)

	var dup errResp
	status := env.do(http.MethodPost, "/api/auth/register", "", auth.RegisterInput{
		Name: "Outra", Email: "maria@example.com", CPF: "987.654.321-00", Password: "secret1", AcceptedTerms: true,
	}, &dup)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "/login", dup.Redirect)

	status = env.do(http.MethodPost, "/api/auth/register", "", auth.RegisterInput{
		Name: "Sem termos", Email: "x@example.com", CPF: "111.222.333-44", Password: "secret1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var missing errResp
	status = env.do(http.MethodPost, "/api/auth/register", "", auth.RegisterInput{
		Name: "Sem CPF", Email: "y@example.com", Password: "secret1", AcceptedTerms: true,
	}, &missing)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, missing.Error, "CPF")

	status = env.do(http.MethodPost, "/api/auth/login", "", loginReq{Email: "maria@example.com", Password: "wrong!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var login loginResp
	status = env.do(http.MethodPost, "/api/auth/login", "", loginReq{Email: "maria@example.com", Password: "secret1"}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, u.ID, login.User.ID)

	var me store.User
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/me", token, nil, &me))
	assert.Equal(t, "Maria Silva", me.Name)

	var bal map[string]int
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/me/credits", login.Token, nil, &bal))
	assert.Equal(t, 3, bal["credits"])

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/me", "", nil, nil))
}

func TestCoursesAndPlans(t *testing.T) {
	env := newTestEnv(t)
	c := storetest.Course(t, env.store, "Excel")

	var list []store.Course
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/courses", "", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Excel", list[0].Title)

	var got store.Course
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, fmt.Sprintf("/api/courses/%d", c.ID), "", nil, &got))
	assert.Equal(t, []string{"Fundamentos", "Prática"}, got.Modules)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/courses/999", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/courses/abc", "", nil, nil))

	var plans []planResp
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/plans", "", nil, &plans))
	require.Len(t, plans, 3)
	assert.Equal(t, "R$ 49,90", plans[0].Price)
}

func TestAttemptPassAndCertificate(t *testing.T) {
	env := newTestEnv(t)
	c := storetest.Course(t, env.store, "Excel")
	token, u := env.register("maria@example.com", "basic")

	var snap exam.Snapshot
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/attempts", c.ID), token, nil, &snap))
	assert.Equal(t, "in_progress", snap.Phase)
	assert.Equal(t, exam.DurationSeconds, snap.TimeRemaining)
	require.Len(t, snap.Questions, questionbank.ExamSize)
	for _, q := range snap.Questions {
		assert.Nil(t, q.Correct, "correct answer must stay hidden")
	}

	attempt := "/api/attempts/" + snap.ID
	qid := snap.Questions[0].ID
	assert.Equal(t, http.StatusBadRequest,
		env.do(http.MethodPut, fmt.Sprintf("%s/answers/%d", attempt, qid), token, map[string]int{"option": 7}, nil))
	assert.Equal(t, http.StatusBadRequest,
		env.do(http.MethodPut, fmt.Sprintf("%s/answers/%d", attempt, qid), token, map[string]any{}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, attempt+"/submit", token, nil, nil))

	env.answerAll(token, u.ID, snap.ID, true)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, attempt+"/submit", token, nil, &snap))
	assert.Equal(t, "submitted", snap.Phase)
	require.NotNil(t, snap.Result)
	assert.True(t, snap.Result.Passed)
	assert.Equal(t, 10, snap.Result.CorrectCount)
	assert.NotNil(t, snap.Questions[0].Correct)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, attempt+"/retry", token, nil, nil))

	var res exam.CreditResult
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, attempt+"/certificate", token, nil, &res))
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Remaining)
	require.NotEmpty(t, res.CertificateID)

	var again exam.CreditResult
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, attempt+"/certificate", token, nil, &again))
	assert.Equal(t, res.CertificateID, again.CertificateID)

	var certs []store.CertificateDetail
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/me/certificates", token, nil, &certs))
	require.Len(t, certs, 1)
	assert.Equal(t, "Excel", certs[0].CourseTitle)

	var attempts []store.Attempt
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/me/attempts", token, nil, &attempts))
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Passed)
	assert.Equal(t, examgen.OriginTemplate, attempts[0].Source)

	resp, err := http.Get(env.srv.URL + "/certificates/" + res.CertificateID)
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(page), "Maria Silva")
	assert.Contains(t, string(page), certs[0].Code)

	var verified verifyResp
	require.Equal(t, http.StatusOK,
		env.do(http.MethodGet, "/api/certificates/verify/"+strings.ToLower(certs[0].Code), "", nil, &verified))
	assert.True(t, verified.Valid)
	assert.Equal(t, "Excel", verified.CourseTitle)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/certificates/verify/ZZZZZZZZZZ", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/certificates/verify/short", "", nil, nil))
}

func TestCertificateWithoutCredits(t *testing.T) {
	env := newTestEnv(t)
	c := storetest.Course(t, env.store, "Excel")
	u := storetest.User(t, env.store, "broke@example.com", 0)
	token := env.tokenFor(u)

	var snap exam.Snapshot
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/attempts", c.ID), token, nil, &snap))
	env.answerAll(token, u.ID, snap.ID, true)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/attempts/"+snap.ID+"/submit", token, nil, nil))

	var res exam.CreditResult
	require.Equal(t, http.StatusPaymentRequired,
		env.do(http.MethodPost, "/api/attempts/"+snap.ID+"/certificate", token, nil, &res))
	assert.False(t, res.Success)
	assert.Equal(t, "/offer", res.Redirect)
	assert.Equal(t, "Insufficient credits", res.Error)
}

func TestAttemptFailRetryAndAbandon(t *testing.T) {
	env := newTestEnv(t)
	c := storetest.Course(t, env.store, "Excel")
	token, u := env.register("maria@example.com", "basic")

	var snap exam.Snapshot
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/attempts", c.ID), token, nil, &snap))
	env.answerAll(token, u.ID, snap.ID, false)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/attempts/"+snap.ID+"/submit", token, nil, &snap))
	require.NotNil(t, snap.Result)
	assert.False(t, snap.Result.Passed)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/attempts/"+snap.ID+"/certificate", token, nil, nil))

	var next exam.Snapshot
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/attempts/"+snap.ID+"/retry", token, nil, &next))
	assert.NotEqual(t, snap.ID, next.ID)
	assert.Equal(t, "in_progress", next.Phase)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/attempts/"+snap.ID, token, nil, nil))

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/attempts/"+next.ID, token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/attempts/"+next.ID, token, nil, nil))

	var me store.User
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/me", token, nil, &me))
	assert.Equal(t, 1, me.Credits, "failing and abandoning spend nothing")
}

func TestAttemptOwnership(t *testing.T) {
	env := newTestEnv(t)
	c := storetest.Course(t, env.store, "Excel")
	owner, _ := env.register("maria@example.com", "basic")
	other, _ := env.register("joao@example.com", "basic")

	var snap exam.Snapshot
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/attempts", c.ID), owner, nil, &snap))

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/attempts/"+snap.ID, other, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/attempts/"+snap.ID, other, nil, nil))
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/attempts/"+snap.ID, owner, nil, nil))
}

func TestAttemptSocket(t *testing.T) {
	env := newTestEnv(t)
	c := storetest.Course(t, env.store, "Excel")
	token, _ := env.register("maria@example.com", "basic")

	var snap exam.Snapshot
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, fmt.Sprintf("/api/courses/%d/attempts", c.ID), token, nil, &snap))

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/api/attempts/" + snap.ID + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg tickMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "in_progress", msg.Phase)
	assert.Equal(t, exam.DurationSeconds, msg.TimeRemaining)

	q := snap.Questions[0]
	require.Equal(t, http.StatusOK, env.do(http.MethodPut,
		fmt.Sprintf("/api/attempts/%s/answers/%d", snap.ID, q.ID), token, map[string]int{"option": 0}, nil))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, 1, msg.Answered)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/attempts/"+snap.ID, token, nil, nil))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestAttemptSocketRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/api/attempts/nope/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func postWebhook(t *testing.T, env *testEnv, body, signature string) (int, webhookResp) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/webhooks/abacatepay", strings.NewReader(body))
	require.NoError(t, err)
	if signature != "" {
		req.Header.Set(payment.SignatureHeader, signature)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out webhookResp
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestPaymentWebhook(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("maria@example.com", "basic")

	body := `{"id":"log_1","event":"BILLING_PAID","data":{"billing":{"id":"bill_ThpKLHjrY41WQFafuyPBM0JP",` +
		`"amount":9990,"customer":{"metadata":{"email":"Maria@Example.com"}}}}}`

	status, _ := postWebhook(t, env, body, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = postWebhook(t, env, body, payment.Sign("wrong", []byte(body)))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, out := postWebhook(t, env, body, payment.Sign(webhookSecret, []byte(body)))
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.Received)
	assert.Equal(t, 3, out.Credits)
	assert.Equal(t, 4, out.Balance)

	status, out = postWebhook(t, env, body, "sha256="+payment.Sign(webhookSecret, []byte(body)))
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.Duplicate)

	var bal map[string]int
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/me/credits", token, nil, &bal))
	assert.Equal(t, 4, bal["credits"])

	var purchases []store.Purchase
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/me/purchases", token, nil, &purchases))
	assert.Len(t, purchases, 1)

	unknown := `{"id":"log_2","event":"BILLING_PAID","data":{"billing":{"amount":4990,"customer":{"email":"ghost@example.com"}}}}`
	status, out = postWebhook(t, env, unknown, payment.Sign(webhookSecret, []byte(unknown)))
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.Ignored)

	status, _ = postWebhook(t, env, `{"event":"BILLING_PAID"}`, payment.Sign(webhookSecret, []byte(`{"event":"BILLING_PAID"}`)))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	student, u := env.register("maria@example.com", "basic")
	admin, _ := env.register("admin@example.com", "basic")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/admin/users", student, nil, nil))

	var users []store.User
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/admin/users", admin, nil, &users))
	assert.Len(t, users, 2)

	var course store.Course
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, "/api/admin/courses", admin, courseReq{Title: "Robótica"}, &course))
	assert.Equal(t, "Certificação profissional em Robótica.", course.Description)
	assert.Equal(t, 60, course.DurationHours)
	assert.Equal(t, http.StatusConflict,
		env.do(http.MethodPost, "/api/admin/courses", admin, courseReq{Title: "Robótica"}, nil))
	assert.Equal(t, http.StatusBadRequest,
		env.do(http.MethodPost, "/api/admin/courses", admin, courseReq{Title: " "}, nil))

	var summaries []store.CourseSummary
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/admin/courses", admin, nil, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].Certificates)

	var bal map[string]int
	path := fmt.Sprintf("/api/admin/users/%d/credits", u.ID)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path, admin, creditsReq{Delta: 2}, &bal))
	assert.Equal(t, 3, bal["credits"])
	assert.Equal(t, http.StatusPaymentRequired, env.do(http.MethodPost, path, admin, creditsReq{Delta: -10}, nil))

	require.Equal(t, http.StatusNoContent,
		env.do(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", course.ID), admin, nil, nil))
	assert.Equal(t, http.StatusNotFound,
		env.do(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", course.ID), admin, nil, nil))
}

func TestAdminCertificates(t *testing.T) {
	env := newTestEnv(t)
	c := storetest.Course(t, env.store, "Excel")
	u := storetest.User(t, env.store, "maria@example.com", 1)
	admin, _ := env.register("admin@example.com", "basic")

	out, err := env.store.Certificates().ConsumeCredit(context.Background(), store.ConsumeParams{
		UserID: u.ID, CourseID: c.ID, AttemptID: "a1", Score: 8, ID: "cert-1", Code: "ABCDEFGHIJ",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict,
		env.do(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", c.ID), admin, nil, nil))

	var certs []store.CertificateDetail
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/admin/certificates", admin, nil, &certs))
	require.Len(t, certs, 1)
	assert.Equal(t, out.Certificate.ID, certs[0].ID)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/admin/certificates/cert-1", admin, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/admin/certificates/cert-1", admin, nil, nil))
}
