package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
)

func TestGenerateNewDescribesImportFields(t *testing.T) {
	p := GenerateNew()
	for _, field := range []string{"title:", "category:", "contents:", "date:"} {
		if !strings.Contains(p, field) {
			t.Errorf("prompt missing %q", field)
		}
	}
}

func TestGenerateForCategory(t *testing.T) {
	existing := []model.Task{
		{Title: "週報を書く", Date: time.Date(2026, 10, 16, 9, 0, 0, 0, time.Local)},
	}
	p := GenerateForCategory("仕事", existing)
	if !strings.Contains(p, "「仕事」") {
		t.Error("prompt should name the category")
	}
	if !strings.Contains(p, "- 週報を書く (2026-10-16 09:00)") {
		t.Errorf("prompt should list existing tasks:\n%s", p)
	}

	if strings.Contains(GenerateForCategory("仕事", nil), "既存のタスク") {
		t.Error("no existing section expected without tasks")
	}
}
