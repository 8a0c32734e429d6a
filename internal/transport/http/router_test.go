package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/infra/memory"
	"live-quiz-service/internal/validation"
)

type identity struct {
	login, code, roles string
}

var (
	teacherID = identity{"teacher", "T1", "TEACHER"}
	studentID = identity{"ana", "S1", "STUDENT"}
	guestID   = identity{"guest", "G1", "ANONYMOUS"}
)

func newTestServer(t *testing.T) (*httptest.Server, *app.QuizService) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	service := app.NewQuizService(validation.NewGate(catalog.Quiz(), log), memory.NewQuizStore(), memory.NewSessionStore(8))
	handler := NewHandler(service, catalog.Quiz(), catalog.Auth(), catalog.User())
	server := httptest.NewServer(NewRouter(handler, NewWSHandler(service), nil))
	t.Cleanup(server.Close)
	return server, service
}

func do(t *testing.T, server *httptest.Server, id identity, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(HeaderLogin, id.login)
	req.Header.Set(HeaderCode, id.code)
	req.Header.Set(HeaderRoles, id.roles)
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp, out
}

func createQuiz(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp, body := do(t, server, teacherID, http.MethodPost, "/quizzes", `{"name":"Fractions","categories":["math"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quiz: status %d body %v", resp.StatusCode, body)
	}
	return body["key"].(string)
}

func TestQuizLifecycleOverREST(t *testing.T) {
	server, _ := newTestServer(t)
	key := createQuiz(t, server)
	base := "/quizzes/" + key

	resp, body := do(t, server, teacherID, http.MethodPost, base+"/items/0",
		`{"kind":"MULTIPLE_CHOICE","question":"Pick","options":["A","B","C"],"answer":"B"}`)
	if resp.StatusCode != http.StatusCreated || body["position"].(float64) != 0 {
		t.Fatalf("add item: status %d body %v", resp.StatusCode, body)
	}

	resp, body = do(t, server, teacherID, http.MethodPost, base+"/items/0", `{"kind":"OPEN","question":"?"}`)
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "DUPLICATE_POSITION" {
		t.Fatalf("expected duplicate position, got %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, server, studentID, http.MethodPost, base+"/items/0/answers", `{"answers":["B"]}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("answer: status %d", resp.StatusCode)
	}
	resp, _ = do(t, server, guestID, http.MethodPost, base+"/items/0/answers", `{"answers":["A"]}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("guest answer: status %d", resp.StatusCode)
	}

	resp, body = do(t, server, teacherID, http.MethodGet, base+"/items/0/tally", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tally: status %d", resp.StatusCode)
	}
	grade := body["grade"].(map[string]any)
	if grade["correct"].(float64) != 1 || grade["participants"].(float64) != 2 {
		t.Fatalf("expected 1 correct of 2, got %v", grade)
	}

	resp, body = do(t, server, studentID, http.MethodGet, base+"/projection", "")
	if resp.StatusCode != http.StatusOK || strings.Contains(toJSON(body), `"answer"`) {
		t.Fatalf("projection: status %d body %v", resp.StatusCode, body)
	}

	resp, _ = do(t, server, teacherID, http.MethodDelete, base+"/items/5", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete absent item: status %d", resp.StatusCode)
	}
	resp, _ = do(t, server, teacherID, http.MethodDelete, base, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete quiz: status %d", resp.StatusCode)
	}
	resp, body = do(t, server, teacherID, http.MethodGet, base, "")
	if resp.StatusCode != http.StatusNotFound || body["code"] != "NOT_FOUND" {
		t.Fatalf("expected not found, got %d %v", resp.StatusCode, body)
	}
}

func TestAuthorizationStatusCodes(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := do(t, server, guestID, http.MethodPost, "/quizzes", `{"name":"x"}`)
	if resp.StatusCode != http.StatusForbidden || body["code"] != "UNAUTHORIZED" {
		t.Fatalf("expected forbidden, got %d %v", resp.StatusCode, body)
	}

	key := createQuiz(t, server)
	resp, body = do(t, server, teacherID, http.MethodPost, "/quizzes/"+key+"/items/first", `{"kind":"OPEN"}`)
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "INVALID_POSITION" {
		t.Fatalf("expected invalid position, got %d %v", resp.StatusCode, body)
	}
	resp, body = do(t, server, teacherID, http.MethodPost, "/quizzes/"+key+"/items/1", `{"kind":"VIDEO"}`)
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "INVALID_KIND" {
		t.Fatalf("expected invalid kind, got %d %v", resp.StatusCode, body)
	}
	resp, body = do(t, server, teacherID, http.MethodGet, "/quizzes/not-a-key", "")
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "INVALID_KEY" {
		t.Fatalf("expected invalid key, got %d %v", resp.StatusCode, body)
	}
}

func TestReplaceQuizWithItems(t *testing.T) {
	server, _ := newTestServer(t)
	key := createQuiz(t, server)

	resp, body := do(t, server, teacherID, http.MethodPut, "/quizzes/"+key,
		`{"name":"Decimals","categories":["math"],"items":[{"kind":"SLIDE_TITLE_1","position":0,"title":"Intro"},{"kind":"TRUE_FALSE","position":3,"question":"1.0 == 1","answer":true}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace: status %d body %v", resp.StatusCode, body)
	}
	items := body["items"].([]any)
	if body["name"] != "Decimals" || len(items) != 2 {
		t.Fatalf("unexpected replaced quiz %v", body)
	}
	resp, body = do(t, server, teacherID, http.MethodGet, "/quizzes/"+key+"/items/3", "")
	if resp.StatusCode != http.StatusOK || body["kind"] != "TRUE_FALSE" {
		t.Fatalf("get item: status %d body %v", resp.StatusCode, body)
	}
}

func TestFillSpaceKeepsAnswerKeyOverREST(t *testing.T) {
	server, _ := newTestServer(t)
	base := "/quizzes/" + createQuiz(t, server)

	resp, body := do(t, server, teacherID, http.MethodPost, base+"/items/5", `{"kind":"FILL_SPACE","text":"_ + 2 = 4","answers":["2"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add fill space: status %d body %v", resp.StatusCode, body)
	}
	resp, _ = do(t, server, studentID, http.MethodPost, base+"/items/5/answers", `{"answers":["3"]}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("answer: status %d", resp.StatusCode)
	}

	resp, body = do(t, server, teacherID, http.MethodGet, base+"/items/5", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get item: status %d body %v", resp.StatusCode, body)
	}
	key, _ := body["answers"].([]any)
	if body["kind"] != "FILL_SPACE" || len(key) != 1 || key[0] != "2" {
		t.Fatalf("expected answer key [2], got %v", body)
	}
	live, _ := body["liveAnswers"].(map[string]any)
	if len(live) != 1 {
		t.Fatalf("expected one live answer next to the key, got %v", body)
	}

	resp, body = do(t, server, teacherID, http.MethodGet, base+"/items/5/tally", "")
	grade, _ := body["grade"].(map[string]any)
	if resp.StatusCode != http.StatusOK || grade["participants"] != float64(1) || grade["correct"] != float64(0) {
		t.Fatalf("unexpected tally %d %v", resp.StatusCode, body)
	}
}

func TestListOperations(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := server.Client().Get(server.URL + "/operations")
	if err != nil {
		t.Fatalf("get operations: %v", err)
	}
	defer resp.Body.Close()
	var views []catalogView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 3 || views[0].Context != "quiz" {
		t.Fatalf("expected three catalogs, got %+v", views)
	}

	resp2, body := do(t, server, guestID, http.MethodGet, "/operations?name=COMMAND_POST_NEW_QUIZ", "")
	if resp2.StatusCode != http.StatusOK || body["name"] != "COMMAND_POST_NEW_QUIZ" {
		t.Fatalf("describe: status %d body %v", resp2.StatusCode, body)
	}
	resp2, body = do(t, server, guestID, http.MethodGet, "/operations?name=NOPE", "")
	if resp2.StatusCode != http.StatusNotFound || body["code"] != "UNKNOWN_OPERATION" {
		t.Fatalf("expected unknown operation, got %d %v", resp2.StatusCode, body)
	}
}

func toJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
