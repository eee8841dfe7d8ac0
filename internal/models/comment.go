package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Comment — узел дерева комментариев.
// Важно:
//   - ParentID == nil или 0 — корневой комментарий (бэкенд хранит 0 для корней);
//   - Children заполняет сервер; порядок из ответа — порядок отображения;
//   - клиент никогда не мутирует узлы, дерево целиком заменяется при обновлении.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	UserID    int64     `json:"user_id"`
	User      User      `json:"user"`
	ParentID  *int64    `json:"parent_id"`
	Children  []Comment `json:"children"`
}

// IsRoot сообщает, что комментарий верхнего уровня.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == 0
}

// CreateCommentRequest — JSON-тело POST /api/v1/comments/.
// ParentID == nil — корень: поле опускается, бэкенд подставит 0.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// Timestamp принимает RFC3339 и ISO-8601 без зоны (так отдаёт бэкенд);
// время без зоны трактуется как UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}

	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = ts
		return nil
	}

	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = ts
			return nil
		}
	}

	return fmt.Errorf("timestamp: unsupported format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}
