package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exam-engine/internal/model"
)

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindValidSubmit(t *testing.T) {
	id := model.NewID().String()
	var req model.SubmitExamRequest
	body := `{"submission_id":"` + id + `","answers":[{"question_id":"` + id + `","selected_index":"two"}]}`

	if fields := bindBody(t, body, &req); fields != nil {
		t.Fatalf("unexpected validation errors: %v", fields)
	}
	if model.NormalizeSelectedIndex(req.Answers[0].SelectedIndex) != model.NoAnswer {
		t.Fatalf("malformed selection should bind and normalize to no answer")
	}
}

func TestBindReportsNestedFieldPaths(t *testing.T) {
	var req model.SubmitExamRequest
	body := `{"submission_id":"nope","answers":[{"question_id":"also-nope","selected_index":1}]}`

	fields := bindBody(t, body, &req)
	if _, ok := fields["submission_id"]; !ok {
		t.Fatalf("missing submission_id error: %v", fields)
	}
	if _, ok := fields["answers[0].question_id"]; !ok {
		t.Fatalf("missing nested question_id error: %v", fields)
	}
}

func TestBindMalformedJSON(t *testing.T) {
	var req model.StartExamRequest
	fields := bindBody(t, `{"exam_id":`, &req)
	if fields["body"] == "" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestParseID(t *testing.T) {
	want := model.NewID()

	got, fields := ParseID("id", " "+want.String()+" ")
	if fields != nil || got != want {
		t.Fatalf("got %v, %v", got, fields)
	}

	for _, raw := range []string{"", "123", "not-a-uuid", "{" + want.String() + "}"} {
		if _, fields := ParseID("id", raw); fields["id"] == "" {
			t.Fatalf("ParseID(%q) accepted", raw)
		}
	}
}
