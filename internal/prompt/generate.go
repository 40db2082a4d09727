package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
)

const yamlFormat = `以下のYAMLフォーマットで出力してください。YAMLのコードブロックのみを出力し、それ以外の文章は含めないでください。

` + "```yaml" + `
tasks:
  - title: "タスク名"
    category: "カテゴリ"
    contents: "タスクの内容"
    date: "YYYY-MM-DD HH:MM"
` + "```" + `

フィールドの説明:
- title: (必須) タスクのタイトル
- category: (任意) カテゴリ。検索に使われます
- contents: (任意) タスクの内容
- date: (任意) 日時 (YYYY-MM-DD HH:MM形式)。この時刻にリマインダーが通知されます`

// GenerateNew returns a prompt for creating new tasks from scratch.
func GenerateNew() string {
	return fmt.Sprintf(`あなたはタスク管理のアシスタントです。
ユーザーの要求に基づいて、タスクを適切な粒度に分解し、それぞれに日時を割り当ててください。

%s
`, yamlFormat)
}

// GenerateForCategory returns a prompt for adding tasks to an existing category.
// existing lists the tasks already in that category, in date order.
func GenerateForCategory(category string, existing []model.Task) string {
	var sb strings.Builder

	sb.WriteString("あなたはタスク管理のアシスタントです。\n")
	sb.WriteString(fmt.Sprintf("カテゴリ「%s」に追加すべきタスクを提案してください。\n", category))

	if len(existing) > 0 {
		sb.WriteString("\n## 既存のタスク\n")
		for _, t := range existing {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", t.Title, t.Date.Format("2006-01-02 15:04")))
		}
		sb.WriteString("\n上記の既存タスクと重複しないようにしてください。\n")
	}

	sb.WriteString(fmt.Sprintf("\n今日の日付: %s\n\n", time.Now().Format("2006-01-02")))
	sb.WriteString(yamlFormat)
	sb.WriteString("\n")

	return sb.String()
}
